package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"reelforge/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("job admitted", String(FieldComponent, "admission"), String(FieldJobID, "abc"), Int("queue_depth", 2))

	line := buf.String()
	if !strings.Contains(line, "INFO admission: job admitted") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "job_id=abc") || !strings.Contains(line, "queue_depth=2") {
		t.Fatalf("expected attrs in console line: %q", line)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("msg", String("title", "two words"))
	if !strings.Contains(buf.String(), `title="two words"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar, false))

	logger.Info("processing complete", String(FieldStep, "merge"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json log line: %v", err)
	}
	if decoded["msg"] != "processing complete" {
		t.Fatalf("msg = %v", decoded["msg"])
	}
	if decoded["level"] != "info" {
		t.Fatalf("level = %v", decoded["level"])
	}
	if decoded[FieldStep] != "merge" {
		t.Fatalf("step = %v", decoded[FieldStep])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	ctx := services.WithJobID(context.Background(), "job-7")
	ctx = WithStep(ctx, "download")
	WithContext(ctx, logger).Info("step started")

	line := buf.String()
	if !strings.Contains(line, "job_id=job-7") || !strings.Contains(line, "step=download") {
		t.Fatalf("expected context fields in line: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
