// Package logging wires slog-based structured logging for the daemon and CLI.
// It provides a human-oriented console handler, a JSON handler for machine
// consumption, attribute helpers, and context-derived fields (job ID, step,
// correlation ID) so every log line produced inside a pipeline run carries the
// same identifiers.
package logging
