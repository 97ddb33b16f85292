package download

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelforge/internal/services"
)

func TestDownloadWritesMediaToStaging(t *testing.T) {
	payload := strings.Repeat("v", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	dest := t.TempDir()
	media, err := New(Config{MaxMiB: 1}).Download(context.Background(), server.URL+"/clip.mp4", dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if media.Bytes != int64(len(payload)) {
		t.Errorf("bytes = %d, want %d", media.Bytes, len(payload))
	}
	if filepath.Ext(media.Path) != ".mp4" {
		t.Errorf("path = %q, want .mp4 extension", media.Path)
	}
	data, err := os.ReadFile(media.Path)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != payload {
		t.Error("downloaded payload does not match source")
	}
}

func TestDownloadPathsNeverCollide(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("clip"))
	}))
	defer server.Close()

	dest := t.TempDir()
	d := New(Config{MaxMiB: 1})
	first, err := d.Download(context.Background(), server.URL+"/clip.mp4", dest)
	if err != nil {
		t.Fatalf("first download: %v", err)
	}
	second, err := d.Download(context.Background(), server.URL+"/clip.mp4", dest)
	if err != nil {
		t.Fatalf("second download: %v", err)
	}
	if first.Path == second.Path {
		t.Errorf("repeated downloads reused path %q", first.Path)
	}
}

func TestDownloadRejectsOversizeContentLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "3145728")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := New(Config{MaxMiB: 2}).Download(context.Background(), server.URL, t.TempDir())
	if !errors.Is(err, services.ErrContent) {
		t.Fatalf("err = %v, want content error", err)
	}
}

func TestDownloadAbortsMidStreamAndRemovesPartial(t *testing.T) {
	// Chunked response with no Content-Length: the limit must trip mid-copy.
	oversize := strings.Repeat("x", 3<<20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(oversize))
	}))
	defer server.Close()

	dest := t.TempDir()
	_, err := New(Config{MaxMiB: 1}).Download(context.Background(), server.URL+"/big.mp4", dest)
	if !errors.Is(err, services.ErrContent) {
		t.Fatalf("err = %v, want content error", err)
	}
	entries, readErr := os.ReadDir(dest)
	if readErr != nil {
		t.Fatalf("read staging dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("partial file left behind: %v", entries)
	}
}

func TestDownloadAcceptsExactLimit(t *testing.T) {
	payload := strings.Repeat("y", 1<<20)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	media, err := New(Config{MaxMiB: 1}).Download(context.Background(), server.URL+"/edge.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("Download at exact limit: %v", err)
	}
	if media.Bytes != int64(len(payload)) {
		t.Errorf("bytes = %d, want %d", media.Bytes, len(payload))
	}
}

func TestDownloadClassifiesServerErrors(t *testing.T) {
	cases := []struct {
		status int
		marker error
	}{
		{http.StatusForbidden, services.ErrContent},
		{http.StatusNotFound, services.ErrContent},
		{http.StatusServiceUnavailable, services.ErrTransient},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := New(Config{}).Download(context.Background(), server.URL, t.TempDir())
		server.Close()
		if !errors.Is(err, tc.marker) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.marker)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	cases := []struct {
		url         string
		contentType string
		want        string
	}{
		{"https://cdn.example.com/a.webm", "", ".webm"},
		{"https://cdn.example.com/a.mp4?sig=abc", "", ".mp4"},
		{"https://cdn.example.com/stream", "video/quicktime", ".mov"},
		{"https://cdn.example.com/stream", "application/octet-stream", ".mp4"},
	}
	for _, tc := range cases {
		if got := extensionFor(tc.url, tc.contentType); got != tc.want {
			t.Errorf("extensionFor(%q, %q) = %q, want %q", tc.url, tc.contentType, got, tc.want)
		}
	}
}
