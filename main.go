package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mustafa-eser/whatsapp-panel/config"
	"github.com/mustafa-eser/whatsapp-panel/engine"
	"github.com/mustafa-eser/whatsapp-panel/metrics"
	"github.com/mustafa-eser/whatsapp-panel/server"
	"github.com/mustafa-eser/whatsapp-panel/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg)

	messageStore, err := store.New(store.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		PoolSize: cfg.DBPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open message store")
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := messageStore.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).
			Str("host", cfg.DBHost).
			Str("database", cfg.DBName).
			Msg("Message store connection failed")
	}
	cancelPing()

	log.Info().
		Str("host", cfg.DBHost).
		Str("database", cfg.DBName).
		Int("pool_size", cfg.DBPoolSize).
		Msg("Message store connected successfully")

	srv := server.New(engine.New(messageStore), metrics.New())

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("Failed to start server")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := messageStore.Close(); err != nil {
		log.Error().Err(err).Msg("Closing message store failed")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
