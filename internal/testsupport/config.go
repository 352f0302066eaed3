package testsupport

import (
	"path/filepath"
	"testing"

	"replay/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Streaming.AccessToken = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.UsersDir = filepath.Join(base, "users")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithTrackBatchSize overrides the metadata batch size on the test config.
func WithTrackBatchSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.TrackBatchSize = size
	}
}

// WithArtistBatchSize overrides the artist sub-batch size on the test config.
func WithArtistBatchSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sync.ArtistBatchSize = size
	}
}
