package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"reelforge/internal/logging"
	"reelforge/internal/metrics"
	"reelforge/internal/services"
)

// Schedule selects how the orchestrator sequences the stage graph.
type Schedule string

const (
	// ScheduleSequential runs every stage in a single linear chain.
	ScheduleSequential Schedule = "sequential"
	// ScheduleConcurrent runs independent stages (audio extraction vs
	// thumbnail, transcription vs OCR) concurrently and releases the
	// downloaded video as soon as neither needs it.
	ScheduleConcurrent Schedule = "concurrent"
	// SchedulePipelined additionally starts summarization as soon as the
	// transcript resolves, without waiting for OCR. The join point still
	// awaits every stage before producing the result.
	SchedulePipelined Schedule = "pipelined"
)

// ParseSchedule maps a config string to a Schedule.
func ParseSchedule(value string) (Schedule, error) {
	switch Schedule(strings.ToLower(strings.TrimSpace(value))) {
	case ScheduleSequential:
		return ScheduleSequential, nil
	case ScheduleConcurrent, "":
		return ScheduleConcurrent, nil
	case SchedulePipelined:
		return SchedulePipelined, nil
	default:
		return "", fmt.Errorf("unknown schedule %q", value)
	}
}

// Options configures the orchestrator.
type Options struct {
	Adapters Adapters
	Schedule Schedule
	Logger   *slog.Logger
	Metrics  *metrics.Pipeline
}

// Orchestrator composes the stage adapters into the ingestion pipeline.
// A single implementation serves every scheduling policy; the policies agree
// on output content and failure semantics and differ only in wall-clock
// latency.
type Orchestrator struct {
	adapters Adapters
	schedule Schedule
	logger   *slog.Logger
	metrics  *metrics.Pipeline
}

// NewOrchestrator validates the adapter set and constructs an orchestrator.
// The thumbnail and OCR adapters are optional: absent adapters degrade the
// same way a failing non-critical stage does.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Adapters.Metadata == nil {
		return nil, errors.New("orchestrator: metadata fetcher required")
	}
	if opts.Adapters.Download == nil {
		return nil, errors.New("orchestrator: downloader required")
	}
	if opts.Adapters.Audio == nil {
		return nil, errors.New("orchestrator: audio extractor required")
	}
	if opts.Adapters.Transcribe == nil {
		return nil, errors.New("orchestrator: transcriber required")
	}
	if opts.Adapters.Summarize == nil {
		return nil, errors.New("orchestrator: summarizer required")
	}
	schedule := opts.Schedule
	if schedule == "" {
		schedule = ScheduleConcurrent
	}
	if schedule != ScheduleSequential && schedule != ScheduleConcurrent && schedule != SchedulePipelined {
		return nil, fmt.Errorf("orchestrator: unknown schedule %q", schedule)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		adapters: opts.Adapters,
		schedule: schedule,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		metrics:  opts.Metrics,
	}, nil
}

// Schedule returns the active scheduling policy.
func (o *Orchestrator) Schedule() Schedule {
	return o.schedule
}

// Run executes the pipeline for one admitted job. Cleanup of every ephemeral
// asset registered so far runs unconditionally before Run returns, on success
// and on failure alike. Once admitted, a job runs to completion or failure;
// the orchestrator adds no cancellation of its own.
func (o *Orchestrator) Run(ctx context.Context, job *Job) (result *Result, err error) {
	if job == nil {
		return nil, errors.New("orchestrator: job required")
	}
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, o.logger)

	start := time.Now()
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("source_url", job.SourceURL),
		logging.String("schedule", string(o.schedule)),
		logging.String("admission_key", job.Key),
	)

	defer func() {
		job.Assets().ReleaseAll()
		// Per-job staging dir; empty once assets are gone.
		if job.StagingDir != "" {
			_ = os.Remove(job.StagingDir)
		}
		elapsed := time.Since(start)
		if err != nil {
			step, _ := FailedStep(err)
			logger.Error("job failed",
				logging.String(logging.FieldEventType, "job_failure"),
				logging.String("failed_step", string(step)),
				logging.Duration("job_duration", elapsed),
				logging.Error(err),
			)
			o.metrics.JobFinished("failed")
			return
		}
		logger.Info("job completed",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.Duration("job_duration", elapsed),
		)
		o.metrics.JobFinished("completed")
	}()

	switch o.schedule {
	case ScheduleSequential:
		return o.runSequential(ctx, job)
	case SchedulePipelined:
		return o.runGraph(ctx, job, true)
	default:
		return o.runGraph(ctx, job, false)
	}
}

// runSequential executes the baseline linear chain:
// fetch -> download -> audio -> thumbnail -> transcribe -> summarize -> ocr -> merge.
func (o *Orchestrator) runSequential(ctx context.Context, job *Job) (*Result, error) {
	var meta SourceMetadata
	if err := o.runStep(ctx, job, StepFetch, func(c context.Context) error {
		var err error
		meta, err = o.adapters.Metadata.Fetch(c, job.SourceURL)
		return err
	}); err != nil {
		return nil, err
	}

	var media DownloadedMedia
	if err := o.runStep(ctx, job, StepDownload, func(c context.Context) error {
		var err error
		media, err = o.adapters.Download.Download(c, meta.MediaURL, job.StagingDir)
		if err == nil {
			job.Assets().Register(media.Path)
		}
		return err
	}); err != nil {
		return nil, err
	}

	var audio ExtractedAudio
	if err := o.runStep(ctx, job, StepAudioExtraction, func(c context.Context) error {
		var err error
		audio, err = o.adapters.Audio.ExtractAudio(c, media.Path, job.StagingDir)
		if err == nil {
			job.Assets().Register(audio.Path)
		}
		return err
	}); err != nil {
		return nil, err
	}

	thumb := o.publishThumbnail(ctx, job, media.Path)

	var transcript string
	if err := o.runStep(ctx, job, StepTranscription, func(c context.Context) error {
		var err error
		transcript, err = o.adapters.Transcribe.Transcribe(c, audio.Path)
		return err
	}); err != nil {
		return nil, err
	}

	var summary Summary
	if err := o.runStep(ctx, job, StepSummarization, func(c context.Context) error {
		var err error
		summary, err = o.adapters.Summarize.Summarize(c, SummaryRequest{
			Transcript:  transcript,
			Title:       meta.Title,
			Description: meta.Description,
		})
		return err
	}); err != nil {
		return nil, err
	}

	visual := o.extractVisualText(ctx, job, thumb)

	merged, err := o.mergeStep(ctx, job, transcript, visual, meta.Description)
	if err != nil {
		return nil, err
	}

	return o.assemble(job, meta, media, audio, thumb, transcript, visual, merged, summary), nil
}

// runGraph executes the optimized stage graph. Audio extraction and thumbnail
// capture run concurrently; the downloaded video is released as soon as both
// are done with it. Transcription and OCR run concurrently; in pipelined mode
// summarization chains directly onto transcription instead of waiting for the
// OCR join.
func (o *Orchestrator) runGraph(ctx context.Context, job *Job, pipelined bool) (*Result, error) {
	var meta SourceMetadata
	if err := o.runStep(ctx, job, StepFetch, func(c context.Context) error {
		var err error
		meta, err = o.adapters.Metadata.Fetch(c, job.SourceURL)
		return err
	}); err != nil {
		return nil, err
	}

	var media DownloadedMedia
	if err := o.runStep(ctx, job, StepDownload, func(c context.Context) error {
		var err error
		media, err = o.adapters.Download.Download(c, meta.MediaURL, job.StagingDir)
		if err == nil {
			job.Assets().Register(media.Path)
		}
		return err
	}); err != nil {
		return nil, err
	}

	var (
		audio    ExtractedAudio
		audioErr error
		thumb    HostedThumbnail
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		audioErr = o.runStep(ctx, job, StepAudioExtraction, func(c context.Context) error {
			var err error
			audio, err = o.adapters.Audio.ExtractAudio(c, media.Path, job.StagingDir)
			if err == nil {
				job.Assets().Register(audio.Path)
			}
			return err
		})
	}()
	go func() {
		defer wg.Done()
		thumb = o.publishThumbnail(ctx, job, media.Path)
	}()
	wg.Wait()
	if audioErr != nil {
		return nil, audioErr
	}

	// Neither remaining stage reads the source video; drop it now to narrow
	// peak disk usage. The exit guard still covers it if this release fails.
	job.Assets().Release(media.Path)

	var (
		transcript    string
		transcriptErr error
		summary       Summary
		summaryErr    error
		visual        string
		joinWG        sync.WaitGroup
	)
	joinWG.Add(2)
	go func() {
		defer joinWG.Done()
		transcriptErr = o.runStep(ctx, job, StepTranscription, func(c context.Context) error {
			var err error
			transcript, err = o.adapters.Transcribe.Transcribe(c, audio.Path)
			return err
		})
		if pipelined && transcriptErr == nil {
			summaryErr = o.runStep(ctx, job, StepSummarization, func(c context.Context) error {
				var err error
				summary, err = o.adapters.Summarize.Summarize(c, SummaryRequest{
					Transcript:  transcript,
					Title:       meta.Title,
					Description: meta.Description,
				})
				return err
			})
		}
	}()
	go func() {
		defer joinWG.Done()
		visual = o.extractVisualText(ctx, job, thumb)
	}()
	joinWG.Wait()
	if transcriptErr != nil {
		return nil, transcriptErr
	}
	if pipelined {
		if summaryErr != nil {
			return nil, summaryErr
		}
	} else {
		if err := o.runStep(ctx, job, StepSummarization, func(c context.Context) error {
			var err error
			summary, err = o.adapters.Summarize.Summarize(c, SummaryRequest{
				Transcript:  transcript,
				Title:       meta.Title,
				Description: meta.Description,
			})
			return err
		}); err != nil {
			return nil, err
		}
	}

	merged, err := o.mergeStep(ctx, job, transcript, visual, meta.Description)
	if err != nil {
		return nil, err
	}

	return o.assemble(job, meta, media, audio, thumb, transcript, visual, merged, summary), nil
}

// publishThumbnail runs the non-critical thumbnail stage. Any failure (or a
// missing adapter) degrades to an empty thumbnail reference.
func (o *Orchestrator) publishThumbnail(ctx context.Context, job *Job, videoPath string) HostedThumbnail {
	var thumb HostedThumbnail
	if o.adapters.Thumbnail == nil {
		return thumb
	}
	_ = o.runStep(ctx, job, StepThumbnail, func(c context.Context) error {
		var err error
		thumb, err = o.adapters.Thumbnail.PublishThumbnail(c, videoPath, job.StagingDir)
		if err != nil {
			thumb = HostedThumbnail{}
			return err
		}
		job.Assets().Register(thumb.LocalFramePath)
		return nil
	})
	return thumb
}

// extractVisualText runs the non-critical OCR stage. When no thumbnail was
// produced the stage is skipped outright rather than run against an empty URL.
func (o *Orchestrator) extractVisualText(ctx context.Context, job *Job, thumb HostedThumbnail) string {
	if o.adapters.OCR == nil {
		return ""
	}
	if thumb.URL == "" {
		logging.WithContext(ctx, o.logger).Debug("no thumbnail available, skipping visual text extraction")
		return ""
	}
	var visual string
	_ = o.runStep(ctx, job, StepOCR, func(c context.Context) error {
		var err error
		visual, err = o.adapters.OCR.ExtractText(c, []string{thumb.URL})
		if err != nil {
			visual = ""
			return err
		}
		return nil
	})
	return visual
}

func (o *Orchestrator) mergeStep(ctx context.Context, job *Job, transcript, visual, description string) (string, error) {
	var merged string
	err := o.runStep(ctx, job, StepMerge, func(context.Context) error {
		merged = MergeMultimodal(transcript, visual, description)
		return nil
	})
	return merged, err
}

// runStep times one stage, records its outcome, and applies the criticality
// policy: critical failures are wrapped with the step label and returned,
// non-critical failures are logged and absorbed.
func (o *Orchestrator) runStep(ctx context.Context, job *Job, step Step, fn func(context.Context) error) error {
	stepCtx := logging.WithStep(ctx, string(step))
	stepLogger := logging.WithContext(stepCtx, o.logger)

	stepLogger.Debug("step started", logging.String(logging.FieldEventType, "step_start"))
	start := time.Now()
	err := fn(stepCtx)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		job.record(step, StepOutcome{Status: OutcomeSuccess, Duration: elapsed})
		o.metrics.ObserveStep(string(step), "success", elapsed)
		stepLogger.Info("step completed",
			logging.String(logging.FieldEventType, "step_complete"),
			logging.Duration("step_duration", elapsed),
		)
		return nil
	case step.Critical():
		job.record(step, StepOutcome{Status: OutcomeFatal, Duration: elapsed, Error: err.Error()})
		o.metrics.ObserveStep(string(step), "fatal", elapsed)
		stepLogger.Error("step failed",
			logging.String(logging.FieldEventType, "step_failure"),
			logging.Duration("step_duration", elapsed),
			logging.Error(err),
		)
		return &StepError{Step: step, Err: err}
	default:
		job.record(step, StepOutcome{Status: OutcomeDegraded, Duration: elapsed, Error: err.Error()})
		o.metrics.ObserveStep(string(step), "degraded", elapsed)
		stepLogger.Warn("step degraded, continuing with empty payload",
			logging.String(logging.FieldEventType, "step_degraded"),
			logging.Duration("step_duration", elapsed),
			logging.Error(err),
		)
		return nil
	}
}

// assemble builds the immutable result. Field sourcing is fixed here so every
// scheduling policy produces identical content: the title and description
// always come from source metadata, never from summarization output.
func (o *Orchestrator) assemble(job *Job, meta SourceMetadata, media DownloadedMedia, audio ExtractedAudio, thumb HostedThumbnail, transcript, visual, merged string, summary Summary) *Result {
	return &Result{
		JobID:         job.ID,
		SourceURL:     job.SourceURL,
		CanonicalURL:  meta.CanonicalURL,
		Title:         meta.Title,
		Description:   meta.Description,
		Transcript:    transcript,
		Summary:       summary,
		VisualText:    visual,
		MergedText:    merged,
		ThumbnailURL:  thumb.URL,
		ThumbnailKey:  thumb.ObjectKey,
		MediaDuration: audio.Duration,
		MediaBytes:    media.Bytes,
		Timings:       job.Timings(),
		CompletedAt:   time.Now().UTC(),
	}
}
