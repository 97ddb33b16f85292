package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelforge/internal/services"
)

const samplePage = `<!doctype html>
<html>
<head>
<title>Fallback title</title>
<link rel="canonical" href="https://example.com/reel/42"/>
<meta property="og:title" content="Sourdough starter basics"/>
<meta property="og:description" content="Day one of the starter."/>
<meta property="og:url" content="https://example.com/reel/42"/>
<meta property="og:video:secure_url" content="https://cdn.example.com/reel/42.mp4"/>
</head>
<body></body>
</html>`

func TestFetchExtractsOpenGraphMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected a user agent header")
		}
		fmt.Fprint(w, samplePage)
	}))
	defer server.Close()

	fetcher := NewFetcher(Config{})
	meta, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Sourdough starter basics" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.MediaURL != "https://cdn.example.com/reel/42.mp4" {
		t.Errorf("media url = %q", meta.MediaURL)
	}
	if meta.CanonicalURL != "https://example.com/reel/42" {
		t.Errorf("canonical url = %q", meta.CanonicalURL)
	}
	if meta.Description != "Day one of the starter." {
		t.Errorf("description = %q", meta.Description)
	}
}

func TestFetchFallsBackToTwitterAndTitleTags(t *testing.T) {
	page := `<html><head>
<title>Only the title</title>
<meta name="twitter:player:stream" content="https://cdn.example.com/alt.mp4"/>
</head><body></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	meta, err := NewFetcher(Config{}).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if meta.Title != "Only the title" {
		t.Errorf("title = %q", meta.Title)
	}
	if meta.MediaURL != "https://cdn.example.com/alt.mp4" {
		t.Errorf("media url = %q", meta.MediaURL)
	}
	if meta.CanonicalURL != server.URL {
		t.Errorf("canonical url = %q, want source url fallback", meta.CanonicalURL)
	}
}

func TestFetchRejectsPageWithoutMediaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><meta property="og:title" content="No video here"/></head></html>`)
	}))
	defer server.Close()

	_, err := NewFetcher(Config{}).Fetch(context.Background(), server.URL)
	if !errors.Is(err, services.ErrContent) {
		t.Fatalf("err = %v, want content error", err)
	}
}

func TestFetchClassifiesHTTPStatuses(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusNotFound, services.ErrNotFound},
		{http.StatusGone, services.ErrNotFound},
		{http.StatusTooManyRequests, services.ErrTransient},
		{http.StatusBadGateway, services.ErrTransient},
		{http.StatusForbidden, services.ErrContent},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := NewFetcher(Config{}).Fetch(context.Background(), server.URL)
		server.Close()
		if !errors.Is(err, tc.marker) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.marker)
		}
	}
}

func TestFetchRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com/x", "not a url"} {
		if _, err := NewFetcher(Config{}).Fetch(context.Background(), raw); !errors.Is(err, services.ErrValidation) {
			t.Errorf("Fetch(%q): err = %v, want validation error", raw, err)
		}
	}
}
