package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/app"
	"github.com/mailsmart/mailsmart/internal/platform/config"
	db "github.com/mailsmart/mailsmart/internal/storage"
)

func main() {
	mode := flag.String("mode", "server", "Service mode (server, digest)")
	once := flag.Bool("once", false, "Run once and exit (for digest mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application, err := app.New(ctx, cfg, database, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire application")
	}

	if err := runMode(ctx, application, *mode, *once); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string, once bool) error {
	switch mode {
	case "server":
		return application.RunServer(ctx)
	case "digest":
		return application.RunDigest(ctx, once)
	default:
		log.Fatalf("Usage: %s --mode=[server|digest]", os.Args[0])

		return nil
	}
}
