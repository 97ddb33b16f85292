// Package testsupport provides factories shared by package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"reelforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.LLM.APIKey = "test-llm-key"
	cfg.Transcribe.APIKey = "test-transcribe-key"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSchedule overrides the scheduling policy on the test config.
func WithSchedule(schedule string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.Schedule = schedule
	}
}

// WithThumbnails enables the thumbnail stage on the test config.
func WithThumbnails(endpoint, bucket string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Thumbnails.Enabled = true
		cfg.Thumbnails.Endpoint = endpoint
		cfg.Thumbnails.AccessKey = "test-access"
		cfg.Thumbnails.SecretKey = "test-secret"
		cfg.Thumbnails.Bucket = bucket
	}
}
