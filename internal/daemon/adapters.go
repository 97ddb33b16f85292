package daemon

import (
	"fmt"

	"reelforge/internal/config"
	"reelforge/internal/pipeline"
	"reelforge/internal/services/download"
	"reelforge/internal/services/llm"
	"reelforge/internal/services/mediatool"
	"reelforge/internal/services/ocr"
	"reelforge/internal/services/scrape"
	"reelforge/internal/services/thumbstore"
	"reelforge/internal/services/transcribe"
)

// buildAdapters constructs the concrete stage implementations from config.
// The thumbnail adapter is only wired when the feature is enabled; the OCR
// adapter follows it, since visual text is unreachable without a thumbnail.
func buildAdapters(cfg *config.Config) (pipeline.Adapters, error) {
	var empty pipeline.Adapters

	tool := mediatool.New(mediatool.Config{
		FFmpegBinary:  cfg.FFmpegBinary(),
		FFprobeBinary: cfg.FFprobeBinary(),
	})

	categories, err := llm.LoadCategories(cfg.Categories.Path)
	if err != nil {
		return empty, fmt.Errorf("build adapters: %w", err)
	}
	summarizer, err := llm.NewSummarizer(llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}), categories)
	if err != nil {
		return empty, fmt.Errorf("build adapters: %w", err)
	}

	adapters := pipeline.Adapters{
		Metadata: scrape.NewFetcher(scrape.Config{
			UserAgent:      cfg.Scrape.UserAgent,
			TimeoutSeconds: cfg.Scrape.TimeoutSeconds,
		}),
		Download: download.New(download.Config{
			MaxMiB:         int64(cfg.Download.MaxMiB),
			TimeoutSeconds: cfg.Download.TimeoutSeconds,
			UserAgent:      cfg.Download.UserAgent,
		}),
		Audio: tool,
		Transcribe: transcribe.NewClient(transcribe.Config{
			BaseURL:        cfg.Transcribe.BaseURL,
			APIKey:         cfg.Transcribe.APIKey,
			Model:          cfg.Transcribe.Model,
			MaxInputMiB:    int64(cfg.Transcribe.MaxInputMiB),
			TimeoutSeconds: cfg.Transcribe.TimeoutSeconds,
		}),
		Summarize: summarizer,
	}

	if cfg.Thumbnails.Enabled {
		publisher, err := thumbstore.NewPublisher(thumbstore.Config{
			Endpoint:      cfg.Thumbnails.Endpoint,
			AccessKey:     cfg.Thumbnails.AccessKey,
			SecretKey:     cfg.Thumbnails.SecretKey,
			Bucket:        cfg.Thumbnails.Bucket,
			UseSSL:        cfg.Thumbnails.UseSSL,
			PublicBaseURL: cfg.Thumbnails.PublicBaseURL,
		}, tool)
		if err != nil {
			return empty, fmt.Errorf("build adapters: %w", err)
		}
		adapters.Thumbnail = publisher
		adapters.OCR = ocr.NewClient(ocr.Config{
			BaseURL:        cfg.OCR.BaseURL,
			APIKey:         cfg.OCR.APIKey,
			TimeoutSeconds: cfg.OCR.TimeoutSeconds,
		})
	}

	return adapters, nil
}
