package config

import (
	"errors"
	"fmt"
	"strings"
)

var validSchedules = map[string]struct{}{
	"sequential": {},
	"concurrent": {},
	"pipelined":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTranscribe(); err != nil {
		return err
	}
	if err := c.validateThumbnails(); err != nil {
		return err
	}
	if err := c.validateKeepAlive(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if _, ok := validSchedules[c.Pipeline.Schedule]; !ok {
		return fmt.Errorf("pipeline.schedule must be one of sequential, concurrent, pipelined (got %q)", c.Pipeline.Schedule)
	}
	if c.Pipeline.MaxConcurrentJobs < 1 {
		return errors.New("pipeline.max_concurrent_jobs must be at least 1")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelforge/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'reelforge config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTranscribe() error {
	if c.Transcribe.APIKey == "" {
		return errors.New("transcribe.api_key is required. Set TRANSCRIBE_API_KEY env var or edit the config file")
	}
	return nil
}

func (c *Config) validateThumbnails() error {
	if !c.Thumbnails.Enabled {
		return nil
	}
	if c.Thumbnails.Endpoint == "" {
		return errors.New("thumbnails.endpoint must be set when thumbnails.enabled is true")
	}
	if strings.TrimSpace(c.Thumbnails.AccessKey) == "" || strings.TrimSpace(c.Thumbnails.SecretKey) == "" {
		return errors.New("thumbnails.access_key and thumbnails.secret_key must be set when thumbnails.enabled is true")
	}
	return nil
}

func (c *Config) validateKeepAlive() error {
	if !c.KeepAlive.Enabled {
		return nil
	}
	if c.KeepAlive.URL == "" {
		return errors.New("keepalive.url must be set when keepalive.enabled is true")
	}
	if !strings.HasPrefix(c.KeepAlive.URL, "http://") && !strings.HasPrefix(c.KeepAlive.URL, "https://") {
		return errors.New("keepalive.url must be an http(s) URL")
	}
	return nil
}
