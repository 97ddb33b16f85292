package pipeline

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus classifies how a step finished.
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeDegraded OutcomeStatus = "degraded"
	OutcomeFatal    OutcomeStatus = "fatal"
)

// StepOutcome records one step's terminal state. Outcomes are owned
// exclusively by the job that produced them.
type StepOutcome struct {
	Status   OutcomeStatus
	Duration time.Duration
	Error    string
}

// Job identifies one ingestion attempt: the admission key, the source URL,
// the registry of ephemeral assets created along the way, and the per-step
// timing map. A job is created once admitted past the queue and is done when
// the orchestrator returns.
type Job struct {
	ID         string
	Key        string
	SourceURL  string
	StagingDir string
	CreatedAt  time.Time

	assets *AssetRegistry

	mu       sync.Mutex
	timings  map[Step]time.Duration
	outcomes map[Step]StepOutcome
}

// NewJob constructs a job with a unique identifier and a per-job staging
// directory under stagingRoot. The directory itself is created lazily by the
// stage adapters.
func NewJob(key, sourceURL, stagingRoot string, logger *slog.Logger) (*Job, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, errors.New("job: source url required")
	}
	if strings.TrimSpace(stagingRoot) == "" {
		return nil, errors.New("job: staging root required")
	}
	id := uuid.NewString()
	return &Job{
		ID:         id,
		Key:        strings.TrimSpace(key),
		SourceURL:  sourceURL,
		StagingDir: filepath.Join(stagingRoot, id),
		CreatedAt:  time.Now().UTC(),
		assets:     NewAssetRegistry(logger),
		timings:    make(map[Step]time.Duration),
		outcomes:   make(map[Step]StepOutcome),
	}, nil
}

// Assets returns the job's ephemeral asset registry.
func (j *Job) Assets() *AssetRegistry {
	return j.assets
}

func (j *Job) record(step Step, outcome StepOutcome) {
	if outcome.Duration < 0 {
		outcome.Duration = 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.timings[step] = outcome.Duration
	j.outcomes[step] = outcome
}

// Timings returns a copy of the per-step duration map.
func (j *Job) Timings() map[Step]time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[Step]time.Duration, len(j.timings))
	for step, d := range j.timings {
		out[step] = d
	}
	return out
}

// Outcomes returns a copy of the per-step outcome map.
func (j *Job) Outcomes() map[Step]StepOutcome {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[Step]StepOutcome, len(j.outcomes))
	for step, outcome := range j.outcomes {
		out[step] = outcome
	}
	return out
}
