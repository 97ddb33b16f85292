package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePipeline()
	c.normalizeGuards()
	c.normalizeServices()
	if err := c.normalizeCategories(); err != nil {
		return err
	}
	c.normalizeKeepAlive()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizePipeline() {
	c.Pipeline.Schedule = strings.ToLower(strings.TrimSpace(c.Pipeline.Schedule))
	if c.Pipeline.Schedule == "" {
		c.Pipeline.Schedule = defaultSchedule
	}
	if c.Pipeline.MaxConcurrentJobs <= 0 {
		c.Pipeline.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
}

func (c *Config) normalizeGuards() {
	if c.Download.MaxMiB <= 0 {
		c.Download.MaxMiB = defaultDownloadMaxMiB
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = defaultDownloadTimeout
	}
	c.Download.UserAgent = strings.TrimSpace(c.Download.UserAgent)
	if c.Download.UserAgent == "" {
		c.Download.UserAgent = defaultUserAgent
	}
	c.Scrape.UserAgent = strings.TrimSpace(c.Scrape.UserAgent)
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = defaultUserAgent
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		c.Scrape.TimeoutSeconds = defaultScrapeTimeout
	}
}

func (c *Config) normalizeServices() {
	c.Transcribe.BaseURL = strings.TrimSpace(c.Transcribe.BaseURL)
	if c.Transcribe.BaseURL == "" {
		c.Transcribe.BaseURL = defaultTranscribeBaseURL
	}
	c.Transcribe.Model = strings.TrimSpace(c.Transcribe.Model)
	if c.Transcribe.Model == "" {
		c.Transcribe.Model = defaultTranscribeModel
	}
	if c.Transcribe.MaxInputMiB <= 0 {
		c.Transcribe.MaxInputMiB = defaultTranscribeMaxMiB
	}
	if c.Transcribe.TimeoutSeconds <= 0 {
		c.Transcribe.TimeoutSeconds = defaultTranscribeTimeout
	}
	c.Transcribe.APIKey = strings.TrimSpace(c.Transcribe.APIKey)

	c.OCR.BaseURL = strings.TrimSpace(c.OCR.BaseURL)
	c.OCR.APIKey = strings.TrimSpace(c.OCR.APIKey)
	if c.OCR.TimeoutSeconds <= 0 {
		c.OCR.TimeoutSeconds = defaultOCRTimeout
	}

	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	if c.LLM.Referer == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.Title == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)

	c.Thumbnails.Endpoint = strings.TrimSpace(c.Thumbnails.Endpoint)
	c.Thumbnails.Bucket = strings.TrimSpace(c.Thumbnails.Bucket)
	if c.Thumbnails.Bucket == "" {
		c.Thumbnails.Bucket = defaultThumbnailBucket
	}
	c.Thumbnails.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Thumbnails.PublicBaseURL), "/")
}

func (c *Config) normalizeCategories() error {
	if strings.TrimSpace(c.Categories.Path) == "" {
		return nil
	}
	expanded, err := expandPath(c.Categories.Path)
	if err != nil {
		return fmt.Errorf("categories.path: %w", err)
	}
	c.Categories.Path = expanded
	return nil
}

func (c *Config) normalizeKeepAlive() {
	c.KeepAlive.URL = strings.TrimSpace(c.KeepAlive.URL)
	if c.KeepAlive.IntervalSeconds <= 0 {
		c.KeepAlive.IntervalSeconds = defaultKeepAliveInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
