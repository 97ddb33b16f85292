// Package mediatool shells out to ffmpeg and ffprobe for local media
// processing: transcription-ready audio extraction, representative frame
// capture, and duration probing.
package mediatool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelforge/internal/pipeline"
	"reelforge/internal/services"
)

// Config names the binaries to invoke. Empty values fall back to PATH lookup.
type Config struct {
	FFmpegBinary  string
	FFprobeBinary string
}

// Tool wraps the ffmpeg/ffprobe invocations used by the pipeline stages.
type Tool struct {
	cfg Config

	commandRunner func(ctx context.Context, name string, args ...string) error
	outputRunner  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New constructs a media tool around the configured binaries.
func New(cfg Config) *Tool {
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(cfg.FFprobeBinary) == "" {
		cfg.FFprobeBinary = "ffprobe"
	}
	return &Tool{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tool) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	t.commandRunner = runner
}

// WithOutputRunner sets a custom output-capturing runner (for testing).
func (t *Tool) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) ([]byte, error)) {
	t.outputRunner = runner
}

// ExtractAudio produces a mono 16kHz PCM WAV from the video's audio stream,
// the format the transcription backend expects.
func (t *Tool) ExtractAudio(ctx context.Context, videoPath, destDir string) (pipeline.ExtractedAudio, error) {
	var empty pipeline.ExtractedAudio
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "audio_extraction", "extract_audio", "create staging dir", err)
	}
	dest := filepath.Join(destDir, "audio.wav")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := t.run(ctx, t.cfg.FFmpegBinary, args...); err != nil {
		_ = os.Remove(dest)
		return empty, services.Wrap(services.ErrExternalTool, "audio_extraction", "extract_audio", "ffmpeg failed", err)
	}
	info, err := os.Stat(dest)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(dest)
		return empty, services.Wrap(services.ErrContent, "audio_extraction", "extract_audio", "source has no usable audio stream", err)
	}
	duration, err := t.ProbeDuration(ctx, dest)
	if err != nil {
		// Duration is informational; the audio file itself is good.
		duration = 0
	}
	return pipeline.ExtractedAudio{Path: dest, Duration: duration}, nil
}

// CaptureFrame grabs a single representative frame near the start of the
// video and writes it as a JPEG.
func (t *Tool) CaptureFrame(ctx context.Context, videoPath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "thumbnail", "capture_frame", "create staging dir", err)
	}
	dest := filepath.Join(destDir, "frame.jpg")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", "1",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "3",
		dest,
	}
	if err := t.run(ctx, t.cfg.FFmpegBinary, args...); err != nil {
		_ = os.Remove(dest)
		return "", services.Wrap(services.ErrExternalTool, "thumbnail", "capture_frame", "ffmpeg failed", err)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		_ = os.Remove(dest)
		return "", services.Wrap(services.ErrContent, "thumbnail", "capture_frame", "no frame produced", err)
	}
	return dest, nil
}

// ProbeDuration reads the container duration via ffprobe.
func (t *Tool) ProbeDuration(ctx context.Context, mediaPath string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		mediaPath,
	}
	output, err := t.output(ctx, t.cfg.FFprobeBinary, args...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "audio_extraction", "probe_duration", "ffprobe failed", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "audio_extraction", "probe_duration",
			fmt.Sprintf("unparseable duration %q", strings.TrimSpace(string(output))), err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// run executes a command, using the custom runner if set.
func (t *Tool) run(ctx context.Context, name string, args ...string) error {
	if t.commandRunner != nil {
		return t.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (t *Tool) output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if t.outputRunner != nil {
		return t.outputRunner(ctx, name, args...)
	}
	return exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
}
