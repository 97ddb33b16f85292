// Package scrape resolves a public media page into canonical metadata and a
// direct media URL by reading the page's OpenGraph tags.
package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	maxPageBytes     = 4 << 20
)

// Config captures the runtime settings for the page fetcher.
type Config struct {
	UserAgent      string
	TimeoutSeconds int
}

// Fetcher implements pipeline.MetadataFetcher against OpenGraph-tagged pages.
type Fetcher struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// NewFetcher constructs a metadata fetcher.
func NewFetcher(cfg Config, opts ...Option) *Fetcher {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	f := &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the page at sourceURL and extracts its media metadata.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) (pipeline.SourceMetadata, error) {
	var empty pipeline.SourceMetadata
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return empty, services.Wrap(services.ErrValidation, "fetch", "fetch_metadata", "source url required", nil)
	}
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" {
		return empty, services.Wrap(services.ErrValidation, "fetch", "fetch_metadata", fmt.Sprintf("unsupported source url %q", sourceURL), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "fetch", "fetch_metadata", "build request", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, "fetch", "fetch_metadata", "request page", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return empty, services.Wrap(services.ErrNotFound, "fetch", "fetch_metadata", fmt.Sprintf("page returned %d", resp.StatusCode), nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return empty, services.Wrap(services.ErrTransient, "fetch", "fetch_metadata", fmt.Sprintf("page returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return empty, services.Wrap(services.ErrContent, "fetch", "fetch_metadata", fmt.Sprintf("page returned %d", resp.StatusCode), nil)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return empty, services.Wrap(services.ErrContent, "fetch", "fetch_metadata", "parse page", err)
	}

	meta := extractMetadata(doc, sourceURL)
	if meta.MediaURL == "" {
		return empty, services.Wrap(services.ErrContent, "fetch", "fetch_metadata", "page exposes no media url", nil)
	}
	return meta, nil
}

func extractMetadata(doc *goquery.Document, sourceURL string) pipeline.SourceMetadata {
	meta := pipeline.SourceMetadata{
		CanonicalURL: firstMetaContent(doc, `meta[property="og:url"]`),
		MediaURL: firstNonEmpty(
			firstMetaContent(doc, `meta[property="og:video:secure_url"]`),
			firstMetaContent(doc, `meta[property="og:video:url"]`),
			firstMetaContent(doc, `meta[property="og:video"]`),
			firstMetaContent(doc, `meta[name="twitter:player:stream"]`),
		),
		Title: firstNonEmpty(
			firstMetaContent(doc, `meta[property="og:title"]`),
			firstMetaContent(doc, `meta[name="twitter:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			firstMetaContent(doc, `meta[property="og:description"]`),
			firstMetaContent(doc, `meta[name="description"]`),
			firstMetaContent(doc, `meta[name="twitter:description"]`),
		),
	}
	if meta.CanonicalURL == "" {
		if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
			meta.CanonicalURL = strings.TrimSpace(href)
		}
	}
	if meta.CanonicalURL == "" {
		meta.CanonicalURL = sourceURL
	}
	return meta
}

func firstMetaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
