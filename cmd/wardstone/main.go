// main is the entry point of the Wardstone application.
// It initializes the configuration, logger, GeoIP provider, registry,
// scheduler and starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/alerting"
	"github.com/wardstone/wardstone/internal/checker"
	"github.com/wardstone/wardstone/internal/config"
	"github.com/wardstone/wardstone/internal/fake"
	"github.com/wardstone/wardstone/internal/geoip"
	"github.com/wardstone/wardstone/internal/logger"
	"github.com/wardstone/wardstone/internal/notify"
	"github.com/wardstone/wardstone/internal/registry"
	"github.com/wardstone/wardstone/internal/scheduler"
	"github.com/wardstone/wardstone/internal/server"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)
	log.Info().Msg("Starting wardstone service...")

	// GeoIP update
	var geoProvider *geoip.Provider
	if !cfg.GeoIP.Disabled {
		log.Info().Msg("Checking GeoIP database...")
		if err := geoip.EnsureDB(cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		var err error
		geoProvider, err = geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
			geoProvider = nil
		}
	}

	// Core wiring
	reg := registry.New(geoProvider)

	checkers := checker.NewSet(
		checker.NewREST(cfg.Monitoring.StatusAPIURL, cfg.Monitoring.CheckTimeout),
		checker.NewA2S(cfg.A2S.Timeout, cfg.A2S.BufferSize),
	)

	notifier := notify.NewWebhook(notify.Config{
		URL:      cfg.Webhook.URL,
		Template: cfg.Webhook.Template,
		Cooldown: cfg.Webhook.Cooldown,
	})

	sched := scheduler.New(reg, checkers, alerting.New(), notifier,
		cfg.Monitoring.CheckTimeout, time.Duration(cfg.Monitoring.MinInterval)*time.Second)

	// Demo data generation
	if cfg.Monitoring.GenerateCount > 0 {
		fake.Seed(reg, cfg.Monitoring.GenerateCount)
	}

	// Init server
	srvHandler := server.New(reg, sched, cfg)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srvHandler.Run(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Shut down HTTP
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop polling loops (waits for in-flight checks)
	sched.StopAll()

	if err := geoProvider.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing GeoIP provider")
	}

	log.Info().Msg("Server exited")
}
