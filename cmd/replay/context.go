package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"replay/internal/config"
	"replay/internal/enrichment"
	"replay/internal/logging"
	"replay/internal/services/streaming"
	"replay/internal/store"
	"replay/internal/syncer"
	"replay/internal/users"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return logger, nil
}

func (c *commandContext) usersManager(cfg *config.Config) (*users.Manager, error) {
	return users.NewManager(cfg.Paths.UsersDir)
}

// registry resolves the configuration and opens the user registry.
func (c *commandContext) registry() (*users.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return c.usersManager(cfg)
}

// withStore opens the record store for the duration of fn. The flock on the
// database directory is released when fn returns.
func (c *commandContext) withStore(fn func(*config.Config, *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// withOrchestrator wires the full pipeline: streaming client, batch fetcher,
// store, and sync orchestrator.
func (c *commandContext) withOrchestrator(fn func(*config.Config, *store.Store, *syncer.Orchestrator) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		logger, err := c.newLogger(cfg)
		if err != nil {
			return err
		}
		client, err := streaming.New(cfg.Streaming.AccessToken, cfg.Streaming.BaseURL,
			streaming.WithTimeout(time.Duration(cfg.Streaming.TimeoutSeconds)*time.Second))
		if err != nil {
			return err
		}
		fetcher := enrichment.New(client, enrichment.Options{
			TrackBatchSize:   cfg.Sync.TrackBatchSize,
			ArtistBatchSize:  cfg.Sync.ArtistBatchSize,
			FeatureBatchSize: cfg.Sync.FeatureBatchSize,
			Logger:           logger,
		})
		return fn(cfg, st, syncer.New(st, client, fetcher, logger))
	})
}

// resolveOwner picks the acting user: the positional argument when given,
// otherwise the sole registered user.
func (c *commandContext) resolveOwner(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		if owner := strings.TrimSpace(args[0]); owner != "" {
			return owner, nil
		}
	}
	manager, err := c.usersManager(cfg)
	if err != nil {
		return "", err
	}
	ids, err := manager.List()
	if err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no owner given and no users registered (run `replay users add`)")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("no owner given and %d users registered (%s); pass one explicitly",
			len(ids), strings.Join(ids, ", "))
	}
}

// resolveLimit picks the activity pull size: the flag when set, then the
// owner's registered preference, then the configured default.
func (c *commandContext) resolveLimit(cfg *config.Config, owner string, flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if manager, err := c.usersManager(cfg); err == nil {
		if profile, err := manager.Get(owner); err == nil && profile.Preferences.TrackLimit > 0 {
			return profile.Preferences.TrackLimit
		}
	}
	return cfg.Sync.TrackLimit
}

// touchLastActive stamps the owner's profile after a successful run. Owners
// that are not registered are left alone.
func (c *commandContext) touchLastActive(cfg *config.Config, owner string) {
	manager, err := c.usersManager(cfg)
	if err != nil {
		return
	}
	_ = manager.UpdateLastActive(owner)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
