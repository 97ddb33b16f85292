package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
	"reelforge/internal/store"
)

type stubIngestor struct {
	result *pipeline.Result
	err    error
}

func (s *stubIngestor) Ingest(context.Context, string) (*pipeline.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubReader struct {
	results map[string]*pipeline.Result
}

func (s *stubReader) GetByJobID(_ context.Context, jobID string) (*pipeline.Result, error) {
	if result, ok := s.results[jobID]; ok {
		return result, nil
	}
	return nil, store.ErrNotFound
}

func (s *stubReader) List(context.Context, int, int) ([]*pipeline.Result, error) {
	out := make([]*pipeline.Result, 0, len(s.results))
	for _, result := range s.results {
		out = append(out, result)
	}
	return out, nil
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		JobID:      "job-1",
		SourceURL:  "https://example.com/reel/42",
		Title:      "Sourdough starter basics",
		Transcript: "Feed the starter twice a day.",
		Summary:    pipeline.Summary{Summary: "Starter basics.", SuggestedCategory: "Cooking"},
		Timings: map[pipeline.Step]time.Duration{
			pipeline.StepTranscription: 8 * time.Second,
		},
		CompletedAt: time.Now().UTC(),
	}
}

func newTestServer(t *testing.T, opts Options) http.Handler {
	t.Helper()
	if opts.Ingestor == nil {
		opts.Ingestor = &stubIngestor{result: sampleResult()}
	}
	if opts.Results == nil {
		opts.Results = &stubReader{results: map[string]*pipeline.Result{"job-1": sampleResult()}}
	}
	server, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return server.Handler()
}

func TestIngestReturnsArtifact(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"url":"https://example.com/reel/42"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID     string           `json:"job_id"`
		Title     string           `json:"title"`
		Summary   pipeline.Summary `json:"summary"`
		TimingsMS map[string]int64 `json:"timings_ms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != "job-1" || resp.Title != "Sourdough starter basics" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.TimingsMS["transcription"] != 8000 {
		t.Errorf("timings = %v", resp.TimingsMS)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id header")
	}
}

func TestIngestRequiresURL(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestIngestMapsFailureTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		step    string
		message string
	}{
		{
			"content failure",
			&pipeline.StepError{Step: pipeline.StepDownload,
				Err: services.Wrap(services.ErrContent, "download", "download_media", "too large", nil)},
			http.StatusUnprocessableEntity,
			"download",
			"source content cannot be processed",
		},
		{
			"timeout",
			&pipeline.StepError{Step: pipeline.StepTranscription,
				Err: services.Wrap(services.ErrTimeout, "transcription", "transcribe_audio", "timed out", nil)},
			http.StatusGatewayTimeout,
			"transcription",
			"upstream service timed out",
		},
		{
			"not found",
			&pipeline.StepError{Step: pipeline.StepFetch,
				Err: services.Wrap(services.ErrNotFound, "fetch", "fetch_metadata", "page returned 404", nil)},
			http.StatusNotFound,
			"fetch",
			"source not found",
		},
		{
			"transient",
			errors.New("something else"),
			http.StatusBadGateway,
			"",
			"ingestion failed",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestServer(t, Options{Ingestor: &stubIngestor{err: tc.err}})
			req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"url":"https://example.com/x"}`))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var resp struct {
				Error      string `json:"error"`
				FailedStep string `json:"failed_step"`
				Detail     string `json:"detail"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tc.message {
				t.Errorf("error = %q, want %q", resp.Error, tc.message)
			}
			if resp.FailedStep != tc.step {
				t.Errorf("failed_step = %q, want %q", resp.FailedStep, tc.step)
			}
			if resp.Detail != "" {
				t.Error("detail must be absent outside development mode")
			}
		})
	}
}

func TestIngestProductionHidesInternalCause(t *testing.T) {
	cause := services.Wrap(services.ErrTransient,
		"transcription", "transcribe_audio", "api returned 500",
		errors.New("internal backend detail"))
	handler := newTestServer(t, Options{
		Ingestor: &stubIngestor{err: &pipeline.StepError{Step: pipeline.StepTranscription, Err: cause}},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"url":"https://example.com/x"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp struct {
		Error      string `json:"error"`
		FailedStep string `json:"failed_step"`
		Detail     string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, leaked := range []string{"transcribe_audio", "api returned 500", "internal backend detail"} {
		if strings.Contains(resp.Error, leaked) {
			t.Errorf("error field leaks %q: %q", leaked, resp.Error)
		}
	}
	if resp.FailedStep != "transcription" {
		t.Errorf("failed_step = %q", resp.FailedStep)
	}
	if resp.Detail != "" {
		t.Error("detail must be absent outside development mode")
	}
}

func TestIngestDevelopmentModeIncludesDetail(t *testing.T) {
	handler := newTestServer(t, Options{
		Ingestor:    &stubIngestor{err: errors.New("raw cause")},
		Development: true,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader(`{"url":"https://example.com/x"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Detail != "raw cause" {
		t.Errorf("detail = %q", resp.Detail)
	}
}

func TestBearerAuthGatesAPIRoutes(t *testing.T) {
	handler := newTestServer(t, Options{Token: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/results", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d", rec.Code)
	}

	// Health stays open.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestGetResult(t *testing.T) {
	handler := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodGet, "/api/results/job-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/results/missing", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for missing = %d", rec.Code)
	}
}
