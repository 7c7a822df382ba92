package config

const (
	defaultWatchRoot             = "~/reports"
	defaultLogDir                = "~/.local/share/intake/logs"
	defaultSourceDirName         = "downloads"
	defaultDestDirName           = "unzipped"
	defaultStabilityTimeout      = 30
	defaultStabilityPollInterval = 1
	defaultEventQueueSize        = 64
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchRoot: defaultWatchRoot,
			LogDir:    defaultLogDir,
		},
		Watch: Watch{
			SourceDirName:         defaultSourceDirName,
			DestDirName:           defaultDestDirName,
			StabilityTimeout:      defaultStabilityTimeout,
			StabilityPollInterval: defaultStabilityPollInterval,
			EventQueueSize:        defaultEventQueueSize,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
