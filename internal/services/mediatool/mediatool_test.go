package mediatool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"reelforge/internal/services"
)

func TestExtractAudioBuildsTranscriptionReadyArgs(t *testing.T) {
	tool := New(Config{FFmpegBinary: "ffmpeg-test", FFprobeBinary: "ffprobe-test"})

	var gotName string
	var gotArgs []string
	tool.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		// Simulate ffmpeg writing its output file.
		return os.WriteFile(args[len(args)-1], []byte("RIFFdata"), 0o644)
	})
	tool.WithOutputRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("42.5\n"), nil
	})

	audio, err := tool.ExtractAudio(context.Background(), "/staging/media.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Errorf("binary = %q", gotName)
	}
	for _, want := range [][]string{{"-ac", "1"}, {"-ar", "16000"}, {"-c:a", "pcm_s16le"}} {
		if !containsSequence(gotArgs, want) {
			t.Errorf("args missing %v: %v", want, gotArgs)
		}
	}
	if audio.Duration != 42500*time.Millisecond {
		t.Errorf("duration = %v, want 42.5s", audio.Duration)
	}
	if filepath.Base(audio.Path) != "audio.wav" {
		t.Errorf("path = %q", audio.Path)
	}
}

func TestExtractAudioEmptyOutputIsContentError(t *testing.T) {
	tool := New(Config{})
	tool.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		return os.WriteFile(args[len(args)-1], nil, 0o644)
	})

	_, err := tool.ExtractAudio(context.Background(), "/staging/silent.mp4", t.TempDir())
	if !errors.Is(err, services.ErrContent) {
		t.Fatalf("err = %v, want content error", err)
	}
}

func TestExtractAudioToolFailure(t *testing.T) {
	tool := New(Config{})
	tool.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})

	_, err := tool.ExtractAudio(context.Background(), "/staging/media.mp4", t.TempDir())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
}

func TestExtractAudioSurvivesProbeFailure(t *testing.T) {
	tool := New(Config{})
	tool.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		return os.WriteFile(args[len(args)-1], []byte("RIFFdata"), 0o644)
	})
	tool.WithOutputRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("probe exploded")
	})

	audio, err := tool.ExtractAudio(context.Background(), "/staging/media.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if audio.Duration != 0 {
		t.Errorf("duration = %v, want 0 when probing fails", audio.Duration)
	}
}

func TestCaptureFrame(t *testing.T) {
	tool := New(Config{})
	var gotArgs []string
	tool.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return os.WriteFile(args[len(args)-1], []byte("\xff\xd8jpeg"), 0o644)
	})

	path, err := tool.CaptureFrame(context.Background(), "/staging/media.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("CaptureFrame: %v", err)
	}
	if filepath.Base(path) != "frame.jpg" {
		t.Errorf("path = %q", path)
	}
	if !containsSequence(gotArgs, []string{"-frames:v", "1"}) {
		t.Errorf("args missing single-frame flag: %v", gotArgs)
	}
}

func TestProbeDurationRejectsGarbage(t *testing.T) {
	tool := New(Config{})
	tool.WithOutputRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("N/A"), nil
	})

	if _, err := tool.ProbeDuration(context.Background(), "/staging/media.mp4"); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool error", err)
	}
}

func containsSequence(haystack, needle []string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+len(needle)], needle) {
			return true
		}
	}
	return false
}
