package pipeline

import (
	"context"
	"time"
)

// SourceMetadata is the output of the source-metadata fetch stage.
type SourceMetadata struct {
	CanonicalURL string
	MediaURL     string
	Title        string
	Description  string
}

// DownloadedMedia is the output of the binary download stage.
type DownloadedMedia struct {
	Path  string
	Bytes int64
}

// ExtractedAudio is the output of the audio extraction stage.
type ExtractedAudio struct {
	Path     string
	Duration time.Duration
}

// HostedThumbnail is the output of the thumbnail capture+upload stage.
// LocalFramePath points at the captured frame on disk so the job can register
// it as an ephemeral asset; URL and ObjectKey reference the hosted copy.
type HostedThumbnail struct {
	URL            string
	ObjectKey      string
	LocalFramePath string
}

// QuizItem is one generated comprehension question.
type QuizItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Summary is the structured learning content produced by the summarization
// stage.
type Summary struct {
	Summary           string     `json:"summary"`
	KeyPoints         []string   `json:"key_points"`
	Examples          []string   `json:"examples"`
	Tags              []string   `json:"tags"`
	SuggestedCategory string     `json:"suggested_category"`
	Quiz              []QuizItem `json:"quiz"`
	Checklist         []string   `json:"checklist"`
}

// SummaryRequest carries everything the summarization stage may draw on.
type SummaryRequest struct {
	Transcript  string
	Title       string
	Description string
}

// MetadataFetcher resolves a source URL into canonical metadata and a direct
// media URL.
type MetadataFetcher interface {
	Fetch(ctx context.Context, sourceURL string) (SourceMetadata, error)
}

// Downloader transfers the binary media into destDir, enforcing its own size
// and timeout guards. Implementations must remove partial output on failure.
type Downloader interface {
	Download(ctx context.Context, mediaURL, destDir string) (DownloadedMedia, error)
}

// AudioExtractor produces a transcription-ready audio file from a local video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, destDir string) (ExtractedAudio, error)
}

// ThumbnailPublisher captures a representative frame from a local video and
// uploads it to hosted storage.
type ThumbnailPublisher interface {
	PublishThumbnail(ctx context.Context, videoPath, destDir string) (HostedThumbnail, error)
}

// Transcriber converts a local audio file into text, enforcing its own input
// size guard.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// VisualTextExtractor reads on-screen text from hosted images. Absence of
// text is a normal outcome: implementations return an empty string, not an
// error, when nothing is found.
type VisualTextExtractor interface {
	ExtractText(ctx context.Context, imageURLs []string) (string, error)
}

// Summarizer produces structured learning content from a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (Summary, error)
}

// Adapters bundles the concrete stage implementations the orchestrator
// composes.
type Adapters struct {
	Metadata   MetadataFetcher
	Download   Downloader
	Audio      AudioExtractor
	Thumbnail  ThumbnailPublisher
	Transcribe Transcriber
	OCR        VisualTextExtractor
	Summarize  Summarizer
}
