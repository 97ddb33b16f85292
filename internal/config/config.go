package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir" env:"REELFORGE_STAGING_DIR"`
	DataDir    string `toml:"data_dir"    env:"REELFORGE_DATA_DIR"`
	LogDir     string `toml:"log_dir"     env:"REELFORGE_LOG_DIR"`
	APIBind    string `toml:"api_bind"    env:"REELFORGE_API_BIND"`
	APIToken   string `toml:"api_token"   env:"REELFORGE_API_TOKEN"`
}

// Pipeline contains orchestration and admission settings.
type Pipeline struct {
	// Schedule selects the stage scheduling policy: sequential, concurrent,
	// or pipelined.
	Schedule string `toml:"schedule" env:"REELFORGE_SCHEDULE"`
	// MaxConcurrentJobs bounds how many ingestions execute at once. Sized for
	// the host memory budget; the default of 1 serializes all jobs.
	MaxConcurrentJobs int `toml:"max_concurrent_jobs" env:"REELFORGE_MAX_CONCURRENT_JOBS"`
}

// Download contains guards for the binary media transfer.
type Download struct {
	MaxMiB         int    `toml:"max_mib"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Scrape contains settings for source metadata fetching.
type Scrape struct {
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcribe contains configuration for the remote transcription service.
type Transcribe struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key" env:"TRANSCRIBE_API_KEY"`
	Model          string `toml:"model"`
	MaxInputMiB    int    `toml:"max_input_mib"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// OCR contains configuration for the visual-text extraction service.
type OCR struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key" env:"OCR_API_KEY"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// LLM contains shared chat-completion connection settings.
type LLM struct {
	APIKey         string `toml:"api_key" env:"OPENROUTER_API_KEY"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Thumbnails contains object-storage settings for hosted thumbnail uploads.
type Thumbnails struct {
	Enabled       bool   `toml:"enabled"`
	Endpoint      string `toml:"endpoint"        env:"THUMBSTORE_ENDPOINT"`
	AccessKey     string `toml:"access_key"      env:"THUMBSTORE_ACCESS_KEY"`
	SecretKey     string `toml:"secret_key"      env:"THUMBSTORE_SECRET_KEY"`
	Bucket        string `toml:"bucket"`
	UseSSL        bool   `toml:"use_ssl"`
	PublicBaseURL string `toml:"public_base_url"`
}

// Categories contains the taxonomy used to normalize suggested categories.
type Categories struct {
	Path string `toml:"path"`
}

// KeepAlive contains configuration for the background keep-alive pinger.
type KeepAlive struct {
	Enabled         bool   `toml:"enabled"`
	URL             string `toml:"url"`
	IntervalSeconds int    `toml:"interval_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"REELFORGE_LOG_FORMAT"`
	Level  string `toml:"level"  env:"REELFORGE_LOG_LEVEL"`
}

// Config encapsulates all configuration values for reelforge.
//
// Configuration sections by subsystem:
//   - Paths: directories, API bind address and token
//   - Pipeline: scheduling policy and admission capacity
//   - Scrape/Download: source metadata and media transfer guards
//   - Transcribe/OCR/LLM: external processing service connections
//   - Thumbnails: S3-compatible thumbnail hosting
//   - Categories: taxonomy file for category normalization
//   - KeepAlive: host keep-warm pinger
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Pipeline   Pipeline   `toml:"pipeline"`
	Scrape     Scrape     `toml:"scrape"`
	Download   Download   `toml:"download"`
	Transcribe Transcribe `toml:"transcribe"`
	OCR        OCR        `toml:"ocr"`
	LLM        LLM        `toml:"llm"`
	Thumbnails Thumbnails `toml:"thumbnails"`
	Categories Categories `toml:"categories"`
	KeepAlive  KeepAlive  `toml:"keepalive"`
	Logging    Logging    `toml:"logging"`

	// Development exposes underlying error detail in API failure responses.
	// Production responses carry only the failure class and the step label.
	Development bool `toml:"development" env:"REELFORGE_DEVELOPMENT"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelforge/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized, with environment overrides
// applied on top of file values.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for media processing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
