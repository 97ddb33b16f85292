package pipeline

import (
	"errors"
	"fmt"
)

// Step identifies one discrete processing step in the ingestion pipeline.
type Step string

const (
	StepFetch           Step = "fetch"
	StepDownload        Step = "download"
	StepAudioExtraction Step = "audio_extraction"
	StepThumbnail       Step = "thumbnail"
	StepTranscription   Step = "transcription"
	StepSummarization   Step = "summarization"
	StepOCR             Step = "ocr"
	StepMerge           Step = "merge"
)

// criticalSteps abort the whole job when they fail. The remaining steps
// degrade to an empty payload instead.
var criticalSteps = map[Step]struct{}{
	StepFetch:           {},
	StepDownload:        {},
	StepAudioExtraction: {},
	StepTranscription:   {},
	StepSummarization:   {},
	StepMerge:           {},
}

// Critical reports whether a failure of this step aborts the job.
func (s Step) Critical() bool {
	_, ok := criticalSteps[s]
	return ok
}

// StepError wraps a critical stage failure with the failing step's label. The
// label is diagnostic only; control flow never branches on it.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep extracts the failing step label from an error chain.
func FailedStep(err error) (Step, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}
