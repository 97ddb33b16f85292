// Package ocr reads on-screen text out of hosted images through a hosted
// vision model. Finding no text is a normal outcome, not an error.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/services"
)

const (
	defaultTimeout = 45 * time.Second
	defaultModel   = "qwen/qwen2.5-vl-72b-instruct"

	// noTextMarker is what the prompt instructs the model to answer when the
	// image carries no readable text.
	noTextMarker = "NO_TEXT"

	systemPrompt = "You are an OCR engine. Transcribe every piece of readable text visible in the " +
		"supplied images exactly as written, including usernames, handles, URLs, prices, and numbers. " +
		"Preserve line breaks between distinct text blocks. Do not describe the image. " +
		"If no readable text is present, respond with exactly " + noTextMarker + "."
)

// Config captures the vision endpoint settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
}

// Client implements pipeline.VisualTextExtractor.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs an OCR client.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type visionMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type visionRequest struct {
	Model       string          `json:"model"`
	Messages    []visionMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractText sends the hosted images to the vision model and returns the
// transcribed on-screen text, or an empty string when nothing is readable.
func (c *Client) ExtractText(ctx context.Context, imageURLs []string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", services.Wrap(services.ErrConfiguration, "ocr", "extract_text", "api key required", nil)
	}
	urls := make([]string, 0, len(imageURLs))
	for _, raw := range imageURLs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		return "", nil
	}

	parts := []contentPart{{Type: "text", Text: "Transcribe the text in these images."}}
	for _, u := range urls {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: u}})
	}
	payload := visionRequest{
		Model: c.cfg.Model,
		Messages: []visionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: parts},
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "extract_text", "encode request", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "extract_text", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "ocr", "extract_text", "request timed out", err)
		}
		return "", services.Wrap(services.ErrTransient, "ocr", "extract_text", "send request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "ocr", "extract_text", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ErrContent
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "ocr", "extract_text", fmt.Sprintf("api returned %d", resp.StatusCode), nil)
	}

	var parsed visionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrTransient, "ocr", "extract_text", "decode response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrTransient, "ocr", "extract_text", strings.TrimSpace(parsed.Error.Message), nil)
	}
	if len(parsed.Choices) == 0 {
		return "", services.Wrap(services.ErrTransient, "ocr", "extract_text", "empty choices", nil)
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if strings.EqualFold(text, noTextMarker) {
		return "", nil
	}
	return text, nil
}
