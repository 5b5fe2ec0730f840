package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/storage"
	"github.com/urfave/cli/v3"
)

// Setup initializes the configuration file and both local stores.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	r.config = config

	r.logger.Info("initializing key-value store", "path", config.Storage.StatePath)
	kv, err := storage.NewKeyValueStore(config.Storage.StatePath, r.logger)
	if err != nil {
		return fmt.Errorf("failed to open key-value store: %w", err)
	}
	defer kv.Close()

	if !kv.IsAvailable() {
		return fmt.Errorf("%w: key-value store failed its write probe", shared.ErrStorageUnavailable)
	}

	r.logger.Info("initializing structured store", "path", config.Storage.DatabasePath)
	db, err := shared.NewDatabase(config.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if err := storage.NewStructuredStore(db, r.logger).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize structured store: %w", err)
	}

	r.logger.Infof("setup complete for stores: %v, %v", config.Storage.StatePath, config.Storage.DatabasePath)
	return nil
}
