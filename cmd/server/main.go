package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeepanKumar2553/neoshare/internal/config"
	"github.com/DeepanKumar2553/neoshare/internal/logging"
	"github.com/DeepanKumar2553/neoshare/internal/relay"
	"github.com/DeepanKumar2553/neoshare/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if present (ignored if missing)
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logging.New(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("config loaded",
		zap.String("addr", cfg.Addr()),
		zap.Duration("poll_interval", cfg.Relay.PollInterval),
		zap.Bool("metrics", cfg.Metrics.Enabled))

	registry := relay.NewRegistry(log.Named("registry"))
	handler := relay.NewHandler(registry,
		relay.WithLogger(log.Named("relay")),
		relay.WithPollInterval(cfg.Relay.PollInterval))

	srv := server.New(cfg.Addr(), handler, server.Options{
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
		MaxMessageSize:   cfg.Relay.MaxMessageSize,
		WriteTimeout:     cfg.Relay.WriteTimeout,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsPath:      cfg.Metrics.Path,
		Logger:           log.Named("server"),
	})

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Wait for either error or shutdown signal
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, server.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-sigChan:
		log.Info("shutting down", zap.Stringer("signal", sig))
		srv.Stop()
	}
}
