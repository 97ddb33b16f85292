// Package pipeline implements the media ingestion core: a processing job that
// carries ephemeral assets and per-step timings, a registry guaranteeing those
// assets are removed exactly once on every exit path, adapter contracts for the
// external processing stages, and a single orchestrator parameterized by a
// stage scheduling policy (sequential, concurrent, or pipelined).
//
// Criticality is fixed per step: fetch, download, audio extraction,
// transcription, and summarization abort the job on failure; thumbnail capture
// and visual-text extraction degrade to empty payloads. All scheduling
// policies produce identical results for identical stage outputs; they differ
// only in wall-clock latency.
package pipeline
