// Package services defines shared utilities consumed by the pipeline stage
// adapters and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, step labels, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across stage adapters.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services
