package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStreaming(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.UsersDir) == "" {
		return errors.New("paths.users_dir must be set")
	}
	return nil
}

func (c *Config) validateStreaming() error {
	if c.Streaming.BaseURL == "" {
		return errors.New("streaming.base_url must be set")
	}
	if c.Streaming.AccessToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/replay/config.toml"
		}
		return fmt.Errorf("streaming.access_token is required. Edit %s (create with 'replay config init')", defaultPath)
	}
	if c.Streaming.TimeoutSeconds <= 0 {
		return errors.New("streaming.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.TrackLimit <= 0 {
		return errors.New("sync.track_limit must be positive")
	}
	if c.Sync.TrackBatchSize <= 0 || c.Sync.TrackBatchSize > 50 {
		return errors.New("sync.track_batch_size must be between 1 and 50")
	}
	if c.Sync.ArtistBatchSize <= 0 || c.Sync.ArtistBatchSize > 50 {
		return errors.New("sync.artist_batch_size must be between 1 and 50")
	}
	if c.Sync.FeatureBatchSize <= 0 || c.Sync.FeatureBatchSize > 100 {
		return errors.New("sync.feature_batch_size must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
