// Package ingest is the daemon's front door: it admits one URL at a time
// through the bounded queue, runs the pipeline, and persists the artifact.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"reelforge/internal/admission"
	"reelforge/internal/logging"
	"reelforge/internal/pipeline"
)

// ResultStore persists completed artifacts.
type ResultStore interface {
	SaveResult(ctx context.Context, result *pipeline.Result) error
}

// Service couples the admission queue with the orchestrator and the store.
type Service struct {
	queue        *admission.Queue
	orchestrator *pipeline.Orchestrator
	store        ResultStore
	stagingRoot  string
	logger       *slog.Logger
}

// Options configures the service.
type Options struct {
	Queue        *admission.Queue
	Orchestrator *pipeline.Orchestrator
	Store        ResultStore
	StagingRoot  string
	Logger       *slog.Logger
}

// NewService validates the collaborators and constructs the service. A nil
// store is allowed so the CLI can run one-off ingestions without persistence.
func NewService(opts Options) (*Service, error) {
	if opts.Queue == nil {
		return nil, errors.New("ingest: admission queue required")
	}
	if opts.Orchestrator == nil {
		return nil, errors.New("ingest: orchestrator required")
	}
	if strings.TrimSpace(opts.StagingRoot) == "" {
		return nil, errors.New("ingest: staging root required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		queue:        opts.Queue,
		orchestrator: opts.Orchestrator,
		store:        opts.Store,
		stagingRoot:  opts.StagingRoot,
		logger:       logging.NewComponentLogger(logger, "ingest"),
	}, nil
}

// Queue exposes the admission queue for observability endpoints.
func (s *Service) Queue() *admission.Queue {
	return s.queue
}

// Ingest blocks until a slot frees up, runs the full pipeline for sourceURL,
// and persists the artifact. Cancelling ctx while waiting abandons the
// submission; once admitted, the job runs to completion.
func (s *Service) Ingest(ctx context.Context, sourceURL string) (*pipeline.Result, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, errors.New("ingest: source url required")
	}

	var result *pipeline.Result
	err := s.queue.Run(ctx, func(ctx context.Context) error {
		job, err := pipeline.NewJob(sourceURL, sourceURL, s.stagingRoot, s.logger)
		if err != nil {
			return err
		}
		result, err = s.orchestrator.Run(ctx, job)
		if err != nil {
			return err
		}
		if s.store != nil {
			if err := s.store.SaveResult(ctx, result); err != nil {
				s.logger.Error("failed to persist artifact",
					logging.String(logging.FieldJobID, job.ID),
					logging.Error(err),
				)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
