// Package api exposes the daemon's HTTP surface: synchronous ingestion,
// artifact retrieval, health, and metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"reelforge/internal/logging"
	"reelforge/internal/metrics"
	"reelforge/internal/pipeline"
	"reelforge/internal/services"
	"reelforge/internal/store"
)

// Ingestor runs one URL through the pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, sourceURL string) (*pipeline.Result, error)
}

// ResultReader fetches persisted artifacts.
type ResultReader interface {
	GetByJobID(ctx context.Context, jobID string) (*pipeline.Result, error)
	List(ctx context.Context, limit, offset int) ([]*pipeline.Result, error)
}

// Options configures the HTTP server.
type Options struct {
	Ingestor Ingestor
	Results  ResultReader
	Metrics  *metrics.Pipeline
	Logger   *slog.Logger

	// Token, when set, gates the /api routes behind bearer auth.
	Token string
	// Development includes underlying error detail in failure responses.
	Development bool
}

// Server handles the daemon's HTTP API.
type Server struct {
	opts   Options
	logger *slog.Logger
	router *mux.Router
}

// NewServer builds the router and middleware stack.
func NewServer(opts Options) (*Server, error) {
	if opts.Ingestor == nil {
		return nil, errors.New("api: ingestor required")
	}
	if opts.Results == nil {
		return nil, errors.New("api: result reader required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "api"),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.authMiddleware)
	apiRouter.HandleFunc("/ingest", s.handleIngest).Methods(http.MethodPost)
	apiRouter.HandleFunc("/results", s.handleListResults).Methods(http.MethodGet)
	apiRouter.HandleFunc("/results/{id}", s.handleGetResult).Methods(http.MethodGet)

	router.Use(s.requestIDMiddleware)
	s.router = router
	return s, nil
}

// Handler returns the complete handler including CORS.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.router)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := services.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) != s.opts.Token {
				s.writeError(w, r, http.StatusUnauthorized, "invalid or missing token", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	_ = r
}

type ingestRequest struct {
	URL string `json:"url"`
}

type resultResponse struct {
	JobID         string                 `json:"job_id"`
	SourceURL     string                 `json:"source_url"`
	CanonicalURL  string                 `json:"canonical_url,omitempty"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description,omitempty"`
	Transcript    string                 `json:"transcript"`
	Summary       pipeline.Summary       `json:"summary"`
	VisualText    string                 `json:"visual_text,omitempty"`
	MergedText    string                 `json:"merged_text,omitempty"`
	ThumbnailURL  string                 `json:"thumbnail_url,omitempty"`
	MediaDuration float64                `json:"media_duration_seconds,omitempty"`
	MediaBytes    int64                  `json:"media_bytes,omitempty"`
	TimingsMS     map[string]int64       `json:"timings_ms,omitempty"`
	CompletedAt   time.Time              `json:"completed_at"`
}

func toResultResponse(result *pipeline.Result) resultResponse {
	resp := resultResponse{
		JobID:         result.JobID,
		SourceURL:     result.SourceURL,
		CanonicalURL:  result.CanonicalURL,
		Title:         result.Title,
		Description:   result.Description,
		Transcript:    result.Transcript,
		Summary:       result.Summary,
		VisualText:    result.VisualText,
		MergedText:    result.MergedText,
		ThumbnailURL:  result.ThumbnailURL,
		MediaDuration: result.MediaDuration.Seconds(),
		MediaBytes:    result.MediaBytes,
		CompletedAt:   result.CompletedAt,
	}
	if len(result.Timings) > 0 {
		resp.TimingsMS = make(map[string]int64, len(result.Timings))
		for step, d := range result.Timings {
			resp.TimingsMS[string(step)] = d.Milliseconds()
		}
	}
	return resp
}

// handleIngest runs the pipeline synchronously: the response is the finished
// artifact. Submissions queue behind the admission gate, so slow sources hold
// the connection open rather than failing.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		s.writeError(w, r, http.StatusBadRequest, "url is required", nil)
		return
	}

	result, err := s.opts.Ingestor.Ingest(r.Context(), req.URL)
	if err != nil {
		s.writeIngestError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResultResponse(result))
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	results, err := s.opts.Results.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "listing results failed", err)
		return
	}
	out := make([]resultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, toResultResponse(result))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	result, err := s.opts.Results.GetByJobID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "no artifact for that job", nil)
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, "fetching result failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResultResponse(result))
}

// writeIngestError maps a pipeline failure onto an HTTP status and surfaces
// the failing step label for diagnostics. The error message is a fixed phrase
// per failure class: the underlying cause chain names remote endpoints and
// response bodies, so it only leaves the process in development mode.
func (s *Server) writeIngestError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	message := "ingestion failed"
	switch {
	case errors.Is(err, context.Canceled):
		status = 499 // client closed request
		message = "request cancelled"
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
		message = "invalid request"
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
		message = "source not found"
	case errors.Is(err, services.ErrContent):
		status = http.StatusUnprocessableEntity
		message = "source content cannot be processed"
	case errors.Is(err, services.ErrTimeout):
		status = http.StatusGatewayTimeout
		message = "upstream service timed out"
	}

	payload := map[string]any{"error": message}
	if step, ok := pipeline.FailedStep(err); ok {
		payload["failed_step"] = string(step)
	}
	if s.opts.Development {
		payload["detail"] = err.Error()
	}
	s.logRequestError(r, status, err)
	s.writeJSON(w, status, payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	payload := map[string]any{"error": message}
	if s.opts.Development && err != nil {
		payload["detail"] = err.Error()
	}
	s.logRequestError(r, status, err)
	s.writeJSON(w, status, payload)
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError && err == nil {
		return
	}
	logger := logging.WithContext(r.Context(), s.logger)
	logger.Warn("request failed",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
		logging.Int("status", status),
		logging.Error(err),
	)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to encode response", logging.Error(err))
	}
}
