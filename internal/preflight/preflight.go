package preflight

import (
	"context"

	"reelforge/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDiskSpace("Staging free space", cfg.Paths.StagingDir, minStagingBytes(cfg)))

	results = append(results, CheckLLM(ctx, "Summarization LLM", cfg.LLM))

	return results
}

// AllPassed reports whether every check succeeded.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// minStagingBytes is the free space a single job could plausibly need: the
// download limit plus headroom for the extracted audio and captured frame.
func minStagingBytes(cfg *config.Config) uint64 {
	limit := uint64(cfg.Download.MaxMiB) << 20
	return limit * 2
}
