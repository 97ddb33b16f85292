package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// resultPayload mirrors the daemon's artifact response.
type resultPayload struct {
	JobID         string           `json:"job_id"`
	SourceURL     string           `json:"source_url"`
	CanonicalURL  string           `json:"canonical_url"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Transcript    string           `json:"transcript"`
	Summary       summaryPayload   `json:"summary"`
	VisualText    string           `json:"visual_text"`
	MergedText    string           `json:"merged_text"`
	ThumbnailURL  string           `json:"thumbnail_url"`
	MediaDuration float64          `json:"media_duration_seconds"`
	MediaBytes    int64            `json:"media_bytes"`
	TimingsMS     map[string]int64 `json:"timings_ms"`
	CompletedAt   time.Time        `json:"completed_at"`
}

type summaryPayload struct {
	Summary           string        `json:"summary"`
	KeyPoints         []string      `json:"key_points"`
	Examples          []string      `json:"examples"`
	Tags              []string      `json:"tags"`
	SuggestedCategory string        `json:"suggested_category"`
	Quiz              []quizPayload `json:"quiz"`
	Checklist         []string      `json:"checklist"`
}

type quizPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type errorPayload struct {
	Error      string `json:"error"`
	FailedStep string `json:"failed_step"`
	Detail     string `json:"detail"`
}

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	// Ingestion is synchronous and can legitimately take minutes while a job
	// waits behind the admission gate, so the client carries no overall
	// timeout. Cancellation comes from the command context.
	return &apiClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

func (c *apiClient) Ingest(ctx context.Context, sourceURL string) (*resultPayload, error) {
	body, err := json.Marshal(map[string]string{"url": sourceURL})
	if err != nil {
		return nil, err
	}
	var result resultPayload
	if err := c.do(ctx, http.MethodPost, "/api/ingest", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) ListResults(ctx context.Context, limit, offset int) ([]resultPayload, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/results"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var payload struct {
		Results []resultPayload `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (c *apiClient) GetResult(ctx context.Context, jobID string) (*resultPayload, error) {
	var result resultPayload
	if err := c.do(ctx, http.MethodGet, "/api/results/"+url.PathEscape(jobID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var payload errorPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err != nil || payload.Error == "" {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	if payload.FailedStep != "" {
		return fmt.Errorf("%s (failed step: %s)", payload.Error, payload.FailedStep)
	}
	return fmt.Errorf("%s", payload.Error)
}
