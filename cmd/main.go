package main

import (
	"context"
	"errors"
	"os"

	"github.com/artistblend/abx/internal/history"
	"github.com/artistblend/abx/internal/services"
	"github.com/artistblend/abx/internal/session"
	"github.com/artistblend/abx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	stateDir, err := config.StateDir()
	if err != nil {
		logger.Fatalf("failed to prepare state directory: %v", err)
	}

	store := session.NewStore(stateDir)
	client := services.NewClient(config.API.BaseURL, nil, store.AccessToken, logger)
	cache := history.NewCache(stateDir, logger)
	reconciler := history.NewReconciler(client, cache, logger)
	resolver := session.NewResolver(store, client, logger)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Client:     client,
		Store:      store,
		Resolver:   resolver,
		Reconciler: reconciler,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "abx",
		Usage:    "Blend playlists from your favorite artists",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
