package config

const (
	defaultDataDir       = "~/.local/share/discshelf/data"
	defaultSourcesDir    = "~/.local/share/discshelf/sources"
	defaultLogDir        = "~/.local/share/discshelf/logs"
	defaultAPIBind       = "127.0.0.1:7387"
	defaultMaxBackups    = 10
	defaultVisionBaseURL = "https://api.anthropic.com"
	defaultVisionModel   = "claude-sonnet-4-20250514"
	defaultVisionTimeout = 60
	defaultUPCBaseURL    = "https://api.upcitemdb.com/prod/trial"
	defaultTMDBBaseURL   = "https://api.themoviedb.org/3"
	defaultTMDBLanguage  = "en-US"
	defaultSettleSeconds = 2
	defaultQueueSize     = 32
	defaultNtfyTimeout   = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			SourcesDir: defaultSourcesDir,
			// ProcessedDir is left empty and derived from the effective
			// sources_dir during normalize.
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Store: Store{
			MaxBackups: defaultMaxBackups,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			TimeoutSeconds: defaultVisionTimeout,
		},
		Lookup: Lookup{
			UPCBaseURL:   defaultUPCBaseURL,
			TMDBBaseURL:  defaultTMDBBaseURL,
			TMDBLanguage: defaultTMDBLanguage,
		},
		Watcher: Watcher{
			Enabled:       true,
			SettleSeconds: defaultSettleSeconds,
			QueueSize:     defaultQueueSize,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
