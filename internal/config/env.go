package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// applyEnvironment layers process environment values over file configuration.
// A .env file in the working directory is loaded first (without clobbering
// variables already set), then struct `env` tags are parsed so deployment
// environments can override individual settings without editing the TOML file.
func (c *Config) applyEnvironment() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment overrides: %w", err)
	}
	return nil
}
