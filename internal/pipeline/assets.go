package pipeline

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"reelforge/internal/logging"
)

type assetState struct {
	path     string
	released bool
}

// AssetRegistry tracks the ephemeral on-disk byproducts of one processing job
// and guarantees each is removed exactly once. It is the sole authority
// permitted to delete a job's assets. Removal is best-effort: failures are
// logged and never escalated, so cleanup can never mask the job's primary
// outcome.
type AssetRegistry struct {
	mu     sync.Mutex
	logger *slog.Logger
	assets []*assetState
	byPath map[string]*assetState

	created  int
	released int
}

// NewAssetRegistry constructs an empty registry. A nil logger is replaced with
// a no-op logger.
func NewAssetRegistry(logger *slog.Logger) *AssetRegistry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AssetRegistry{
		logger: logger,
		byPath: make(map[string]*assetState),
	}
}

// Register records a new ephemeral asset path. Registering the same path twice
// is a no-op so adapters can be defensive about reporting their outputs.
func (r *AssetRegistry) Register(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byPath[path]; ok {
		return
	}
	state := &assetState{path: path}
	r.byPath[path] = state
	r.assets = append(r.assets, state)
	r.created++
}

// Release removes a single asset ahead of job completion (opportunistic early
// cleanup). Releasing an unknown or already-released path is a no-op; the exit
// guard still covers anything this call missed.
func (r *AssetRegistry) Release(path string) {
	r.mu.Lock()
	state, ok := r.byPath[path]
	if !ok || state.released {
		r.mu.Unlock()
		return
	}
	state.released = true
	r.released++
	r.mu.Unlock()

	r.remove(path)
}

// ReleaseAll removes every asset that has not been released yet. It runs as
// the job's exit guard on every path out of the orchestrator.
func (r *AssetRegistry) ReleaseAll() {
	r.mu.Lock()
	var pending []string
	for _, state := range r.assets {
		if !state.released {
			state.released = true
			r.released++
			pending = append(pending, state.path)
		}
	}
	r.mu.Unlock()

	for _, path := range pending {
		r.remove(path)
	}
}

func (r *AssetRegistry) remove(path string) {
	err := os.Remove(path)
	switch {
	case err == nil:
		r.logger.Debug("removed ephemeral asset", logging.String("path", path))
	case errors.Is(err, fs.ErrNotExist):
		r.logger.Debug("ephemeral asset already gone", logging.String("path", path))
	default:
		r.logger.Warn("failed to remove ephemeral asset", logging.String("path", path), logging.Error(err))
	}
}

// Created returns how many distinct assets were registered.
func (r *AssetRegistry) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// Released returns how many assets have been released so far.
func (r *AssetRegistry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
