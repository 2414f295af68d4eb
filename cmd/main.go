package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/desertthunder/mvx/internal/gateway"
	"github.com/desertthunder/mvx/internal/repositories"
	"github.com/desertthunder/mvx/internal/session"
	"github.com/desertthunder/mvx/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// Optional; environment overrides beat config.toml values.
	godotenv.Load()

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Warn("failed to open database, falling back to in-memory store", "error", err)
		if db, err = shared.NewDatabase(":memory:"); err != nil {
			logger.Fatalf("failed to open in-memory database: %v", err)
		}
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	tokens := repositories.NewTokenRepository(db)
	cache := repositories.NewMovieCacheRepository(db)

	api := gateway.New(gateway.Options{
		BaseURL:          config.API.BaseURL,
		HTTPClient:       &http.Client{Timeout: config.API.Timeout()},
		Tokens:           tokens,
		ImageBaseURL:     config.Images.BaseURL,
		ImageDefaultSize: config.Images.DefaultSize,
		ImagePlaceholder: config.Images.Placeholder,
		RateLimit:        config.API.RateLimit,
		Logger:           logger,
	})

	sessions := session.New(api, tokens, logger)

	runner := NewRunner(RunnerOpts{
		Config:   config,
		API:      api,
		Sessions: sessions,
		DB:       db,
		Tokens:   tokens,
		Cache:    cache,
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "mvx",
		Usage:    "Browse the movie catalog and manage your watchlist from the terminal",
		Version:  "0.3.0",
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
