package pipeline

import "time"

// Result is the terminal artifact of a completed job. It is immutable once
// produced and is handed to the persistence collaborator as-is.
type Result struct {
	JobID        string
	SourceURL    string
	CanonicalURL string
	Title        string
	Description  string

	Transcript string
	Summary    Summary
	VisualText string
	MergedText string

	ThumbnailURL string
	ThumbnailKey string

	MediaDuration time.Duration
	MediaBytes    int64

	Timings     map[Step]time.Duration
	CompletedAt time.Time
}
