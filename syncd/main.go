// Command syncd serves the key-value sync endpoint used by the pat CLI
// to share state across machines.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/msoler/patrimonio/kvsync"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// A missing .env is fine, the defaults below apply.
	godotenv.Load()

	level, err := zerolog.ParseLevel(getenv("SYNCD_LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()

	addr := getenv("SYNCD_ADDR", ":8787")
	dbPath := getenv("SYNCD_DB", "syncd.db")

	store, err := kvsync.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open store")
	}
	defer store.Close()

	srv := &http.Server{
		Addr:         addr,
		Handler:      kvsync.NewServer(store, log).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("db", dbPath).Msg("syncd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
