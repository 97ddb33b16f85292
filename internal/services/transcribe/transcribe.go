// Package transcribe converts audio files to text through a hosted
// speech-to-text API with a Whisper-style multipart endpoint.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/fileutil"
	"reelforge/internal/services"
)

const (
	defaultTimeout = 3 * time.Minute
	defaultMaxMiB  = 25
	defaultModel   = "whisper-1"
)

// Config captures the speech-to-text endpoint settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxInputMiB    int64
	TimeoutSeconds int
}

// Client implements pipeline.Transcriber.
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

// NewClient constructs a transcription client.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxInputMiB <= 0 {
		cfg.MaxInputMiB = defaultMaxMiB
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

// Transcribe uploads the audio file and returns the recognized text. Inputs
// over the configured size limit are rejected before any bytes leave the host.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", services.Wrap(services.ErrConfiguration, "transcription", "transcribe_audio", "api key required", nil)
	}
	size, err := fileutil.FileSize(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcription", "transcribe_audio", "stat audio file", err)
	}
	maxBytes := c.cfg.MaxInputMiB << 20
	if size > maxBytes {
		return "", services.Wrap(services.ErrContent, "transcription", "transcribe_audio",
			fmt.Sprintf("audio is %s, limit is %s", fileutil.FormatBytes(size), fileutil.FormatBytes(maxBytes)), nil)
	}

	body, contentType, err := c.buildMultipartBody(audioPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcription", "transcribe_audio", "build request body", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "transcription", "transcribe_audio", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", services.Wrap(services.ErrTimeout, "transcription", "transcribe_audio", "request timed out", err)
		}
		return "", services.Wrap(services.ErrTransient, "transcription", "transcribe_audio", "send request", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "transcription", "transcribe_audio", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		marker := services.ErrContent
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			marker = services.ErrTransient
		}
		return "", services.Wrap(marker, "transcription", "transcribe_audio",
			fmt.Sprintf("api returned %d: %s", resp.StatusCode, snippet(payload)), nil)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", services.Wrap(services.ErrTransient, "transcription", "transcribe_audio", "decode response", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}

func (c *Client) buildMultipartBody(audioPath string) (io.Reader, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("model", c.cfg.Model); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func snippet(payload []byte) string {
	text := strings.Join(strings.Fields(string(payload)), " ")
	const limit = 160
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
