package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-server/internal/evaluator"
	"github.com/lox/holdem-server/internal/server"
)

type CLI struct {
	Addr   string `kong:"help='Listen address (overrides config file)'"`
	Config string `kong:"default='holdem.hcl',help='Path to HCL config file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
	Seed   *int64 `kong:"help='Deterministic RNG seed (optional)'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("holdem-server"),
		kong.Description("Multi-table Texas Hold'em server for browsers and bots"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	engineLevel := charmlog.InfoLevel
	if cli.Debug {
		engineLevel = charmlog.DebugLevel
	}
	engineLog := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:  engineLevel,
		Prefix: "engine",
	})

	config, err := server.LoadConfig(cli.Config)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(config.Validate())

	addr := config.ListenAddr()
	if cli.Addr != "" {
		addr = cli.Addr
	}

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}

	// The evaluator's lookup tables are immutable process-wide state;
	// build them before the first hand rather than inside one.
	evaluator.Init()

	srv := server.NewServer(config, logger, engineLog, seed)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Int("tables", len(config.Tables)).
			Int64("seed", seed).
			Msg("server starting")
		serverErr <- srv.Start(addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			kctx.FatalIfErrorf(err)
		}
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
		if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server exited with error")
		} else {
			logger.Info().Msg("server shutdown complete")
		}
	}
}
