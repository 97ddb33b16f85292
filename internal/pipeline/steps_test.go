package pipeline

import (
	"errors"
	"fmt"
	"testing"
)

func TestStepCriticality(t *testing.T) {
	critical := []Step{StepFetch, StepDownload, StepAudioExtraction, StepTranscription, StepSummarization, StepMerge}
	for _, step := range critical {
		if !step.Critical() {
			t.Errorf("step %s should be critical", step)
		}
	}
	for _, step := range []Step{StepThumbnail, StepOCR} {
		if step.Critical() {
			t.Errorf("step %s should not be critical", step)
		}
	}
}

func TestFailedStepExtractsLabelThroughWrapping(t *testing.T) {
	base := errors.New("ffmpeg exited 1")
	err := fmt.Errorf("running job: %w", &StepError{Step: StepAudioExtraction, Err: base})

	step, ok := FailedStep(err)
	if !ok {
		t.Fatal("expected a step label in the chain")
	}
	if step != StepAudioExtraction {
		t.Errorf("step = %s, want %s", step, StepAudioExtraction)
	}
	if !errors.Is(err, base) {
		t.Error("wrapping lost the underlying error")
	}
}

func TestFailedStepAbsent(t *testing.T) {
	if step, ok := FailedStep(errors.New("plain")); ok {
		t.Errorf("unexpected step %s from plain error", step)
	}
}
