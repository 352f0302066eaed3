package config

const (
	defaultDataDir          = "~/.local/share/replay"
	defaultLogDir           = "~/.local/share/replay/logs"
	defaultUsersDir         = "~/.config/replay/users"
	defaultStreamingBaseURL = "https://api.streaming.example/v1"
	defaultStreamingTimeout = 10
	defaultTrackLimit       = 7
	defaultTrackBatchSize   = 50
	defaultArtistBatchSize  = 50
	defaultFeatureBatchSize = 100
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			UsersDir: defaultUsersDir,
		},
		Streaming: Streaming{
			BaseURL:        defaultStreamingBaseURL,
			TimeoutSeconds: defaultStreamingTimeout,
		},
		Sync: Sync{
			TrackLimit:       defaultTrackLimit,
			TrackBatchSize:   defaultTrackBatchSize,
			ArtistBatchSize:  defaultArtistBatchSize,
			FeatureBatchSize: defaultFeatureBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
