// Package preflight provides readiness checks for the external services and
// filesystem paths the ingestion pipeline depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup and refuses to serve when a critical
//     check fails, so a misconfigured host fails fast instead of failing on
//     the first submission.
//   - The CLI "reelforge status" command uses individual check functions to
//     display service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
