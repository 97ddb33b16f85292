package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelforge/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenPath(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleResult(jobID string) *pipeline.Result {
	return &pipeline.Result{
		JobID:        jobID,
		SourceURL:    "https://example.com/reel/42",
		CanonicalURL: "https://example.com/reel/42",
		Title:        "Sourdough starter basics",
		Description:  "Day one of the starter.",
		Transcript:   "Feed the starter twice a day.",
		Summary: pipeline.Summary{
			Summary:           "How to begin a sourdough starter.",
			KeyPoints:         []string{"equal parts flour and water"},
			Tags:              []string{"baking"},
			SuggestedCategory: "Cooking",
			Quiz:              []pipeline.QuizItem{{Question: "How often?", Answer: "Twice a day."}},
		},
		VisualText:    "@breadlab",
		MergedText:    "merged",
		ThumbnailURL:  "https://cdn.example.com/thumbs/a.jpg",
		ThumbnailKey:  "thumbnails/a.jpg",
		MediaDuration: 42 * time.Second,
		MediaBytes:    2048,
		Timings: map[pipeline.Step]time.Duration{
			pipeline.StepDownload:      1200 * time.Millisecond,
			pipeline.StepTranscription: 8 * time.Second,
		},
		CompletedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	want := sampleResult("job-1")
	require.NoError(t, s.SaveResult(context.Background(), want))

	got, err := s.GetByJobID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Transcript, got.Transcript)
	assert.Equal(t, want.Summary, got.Summary)
	assert.Equal(t, want.Timings, got.Timings)
	assert.Equal(t, want.MediaDuration, got.MediaDuration)
	assert.Equal(t, want.MediaBytes, got.MediaBytes)
	assert.WithinDuration(t, want.CompletedAt, got.CompletedAt, time.Second)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetByJobID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIsIdempotentPerJob(t *testing.T) {
	s := openTestStore(t)
	first := sampleResult("job-1")
	require.NoError(t, s.SaveResult(context.Background(), first))

	second := sampleResult("job-1")
	second.Title = "Updated title"
	require.NoError(t, s.SaveResult(context.Background(), second))

	got, err := s.GetByJobID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Updated title", got.Title)

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		result := sampleResult(fmt.Sprintf("job-%d", i))
		result.CompletedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveResult(context.Background(), result))
	}

	results, err := s.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "job-2", results[0].JobID)
	assert.Equal(t, "job-0", results[2].JobID)

	page, err := s.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "job-1", page[0].JobID)
}

func TestSaveNilResult(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SaveResult(context.Background(), nil))
}
