// Package config loads, normalizes, and validates reelforge configuration.
// Values come from a TOML file (default ~/.config/reelforge/config.toml),
// overlaid with environment variables (optionally via a .env file), with
// sensible defaults for everything except the external service credentials.
package config
