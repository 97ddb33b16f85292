package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelforge/internal/services"
)

func newVisionServer(t *testing.T, reply string) (*httptest.Server, *string) {
	t.Helper()
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, reply)
	}))
	t.Cleanup(server.Close)
	return server, &lastBody
}

func TestExtractTextReturnsTranscription(t *testing.T) {
	server, lastBody := newVisionServer(t, "@breadlab\n100g flour 100g water")
	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})

	text, err := client.ExtractText(context.Background(), []string{"https://cdn.example.com/frame.jpg"})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "@breadlab\n100g flour 100g water" {
		t.Errorf("text = %q", text)
	}

	var req struct {
		Messages []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal([]byte(*lastBody), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(req.Messages))
	}
	if !strings.Contains(string(req.Messages[1].Content), "https://cdn.example.com/frame.jpg") {
		t.Error("image url missing from user message")
	}
}

func TestExtractTextNoTextMarkerMeansEmpty(t *testing.T) {
	server, _ := newVisionServer(t, "NO_TEXT")
	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})

	text, err := client.ExtractText(context.Background(), []string{"https://cdn.example.com/frame.jpg"})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestExtractTextSkipsRequestForNoImages(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1", APIKey: "sk-test"})
	text, err := client.ExtractText(context.Background(), []string{"", "  "})
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestExtractTextRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:1"})
	_, err := client.ExtractText(context.Background(), []string{"https://cdn.example.com/frame.jpg"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestExtractTextClassifiesAPIFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "sk-test"})
	_, err := client.ExtractText(context.Background(), []string{"https://cdn.example.com/frame.jpg"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("err = %v, want transient error", err)
	}
}
