package config

const (
	defaultStagingDir        = "~/.local/share/reelforge/staging"
	defaultDataDir           = "~/.local/share/reelforge/data"
	defaultLogDir            = "~/.local/share/reelforge/logs"
	defaultAPIBind           = "127.0.0.1:7519"
	defaultSchedule          = "concurrent"
	defaultMaxConcurrentJobs = 1
	defaultDownloadMaxMiB    = 300
	defaultDownloadTimeout   = 120
	defaultUserAgent         = "Reelforge/dev"
	defaultScrapeTimeout     = 20
	defaultTranscribeBaseURL = "https://api.openai.com/v1"
	defaultTranscribeModel   = "whisper-1"
	defaultTranscribeMaxMiB  = 25
	defaultTranscribeTimeout = 300
	defaultOCRTimeout        = 60
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/reelforge/reelforge"
	defaultLLMTitle          = "Reelforge Summarizer"
	defaultLLMTimeout        = 60
	defaultThumbnailBucket   = "reelforge-thumbnails"
	defaultKeepAliveInterval = 840
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Pipeline: Pipeline{
			Schedule:          defaultSchedule,
			MaxConcurrentJobs: defaultMaxConcurrentJobs,
		},
		Scrape: Scrape{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultScrapeTimeout,
		},
		Download: Download{
			MaxMiB:         defaultDownloadMaxMiB,
			TimeoutSeconds: defaultDownloadTimeout,
			UserAgent:      defaultUserAgent,
		},
		Transcribe: Transcribe{
			BaseURL:        defaultTranscribeBaseURL,
			Model:          defaultTranscribeModel,
			MaxInputMiB:    defaultTranscribeMaxMiB,
			TimeoutSeconds: defaultTranscribeTimeout,
		},
		OCR: OCR{
			TimeoutSeconds: defaultOCRTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Thumbnails: Thumbnails{
			Bucket: defaultThumbnailBucket,
		},
		KeepAlive: KeepAlive{
			IntervalSeconds: defaultKeepAliveInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
