// Package download transfers remote media binaries into the staging area with
// hard size and time limits. A partial file never survives a failed transfer.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/fileutil"
	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

const (
	defaultTimeout   = 2 * time.Minute
	defaultMaxMiB    = 300
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Config captures the runtime limits for media downloads.
type Config struct {
	MaxMiB         int64
	TimeoutSeconds int
	UserAgent      string
}

// Downloader implements pipeline.Downloader over plain HTTP.
type Downloader struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the downloader.
type Option func(*Downloader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// New constructs a downloader with the configured limits.
func New(cfg Config, opts ...Option) *Downloader {
	if cfg.MaxMiB <= 0 {
		cfg.MaxMiB = defaultMaxMiB
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	d := &Downloader{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download streams mediaURL into destDir. The size limit is enforced twice:
// up front from Content-Length when the server provides one, and mid-stream
// while copying, so a lying or silent server cannot exhaust the disk.
func (d *Downloader) Download(ctx context.Context, mediaURL, destDir string) (pipeline.DownloadedMedia, error) {
	var empty pipeline.DownloadedMedia
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return empty, services.Wrap(services.ErrValidation, "download", "download_media", "media url required", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "download", "download_media", "build request", err)
	}
	req.Header.Set("User-Agent", d.cfg.UserAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return empty, services.Wrap(services.ErrTimeout, "download", "download_media", "transfer timed out", err)
		}
		return empty, services.Wrap(services.ErrTransient, "download", "download_media", "request media", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		marker := services.ErrContent
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			marker = services.ErrTransient
		}
		return empty, services.Wrap(marker, "download", "download_media", fmt.Sprintf("server returned %d", resp.StatusCode), nil)
	}

	maxBytes := d.cfg.MaxMiB << 20
	if resp.ContentLength > maxBytes {
		return empty, services.Wrap(services.ErrContent, "download", "download_media",
			fmt.Sprintf("media is %s, limit is %s", fileutil.FormatBytes(resp.ContentLength), fileutil.FormatBytes(maxBytes)), nil)
	}

	dest, err := fileutil.StagingPath(destDir, "media", extensionFor(mediaURL, resp.Header.Get("Content-Type")))
	if err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "download", "download_media", "create staging path", err)
	}
	written, err := d.copyBounded(dest, resp.Body, maxBytes)
	if err != nil {
		// Never leave a partial transfer behind.
		_ = os.Remove(dest)
		if errors.Is(err, context.DeadlineExceeded) {
			return empty, services.Wrap(services.ErrTimeout, "download", "download_media", "transfer timed out", err)
		}
		if errors.Is(err, errTooLarge) {
			return empty, services.Wrap(services.ErrContent, "download", "download_media",
				fmt.Sprintf("media exceeds the %s limit", fileutil.FormatBytes(maxBytes)), nil)
		}
		return empty, services.Wrap(services.ErrTransient, "download", "download_media", "copy media", err)
	}

	return pipeline.DownloadedMedia{Path: dest, Bytes: written}, nil
}

var errTooLarge = errors.New("size limit exceeded")

func (d *Downloader) copyBounded(dest string, body io.Reader, maxBytes int64) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	// Read one byte past the limit so a stream of exactly maxBytes passes.
	written, err := io.Copy(out, io.LimitReader(body, maxBytes+1))
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, err
	}
	if written > maxBytes {
		return written, errTooLarge
	}
	return written, nil
}

func extensionFor(mediaURL, contentType string) string {
	if idx := strings.IndexAny(mediaURL, "?#"); idx >= 0 {
		mediaURL = mediaURL[:idx]
	}
	if ext := strings.ToLower(filepath.Ext(mediaURL)); ext != "" && len(ext) <= 5 {
		return ext
	}
	switch {
	case strings.Contains(contentType, "video/mp4"):
		return ".mp4"
	case strings.Contains(contentType, "video/webm"):
		return ".webm"
	case strings.Contains(contentType, "video/quicktime"):
		return ".mov"
	default:
		return ".mp4"
	}
}
