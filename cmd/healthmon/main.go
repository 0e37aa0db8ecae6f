// Package main provides the entrypoint for the network dashboard's health
// monitor: the background monitoring loop plus its ops HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/config"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/health"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/probe"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "network-health-monitor"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting health monitor")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	probes := probe.NewClient(probe.ClientConfig{
		APIBaseURL: cfg.APIBaseURL,
		BridgeURL:  cfg.BridgeURL,
		Timeout:    cfg.ProbeTimeout,
	})

	monitor := health.NewMonitor(health.MonitorConfig{
		ProbeTimeout:     cfg.ProbeTimeout,
		CheckInterval:    cfg.CheckInterval,
		FailureThreshold: uint32(cfg.MaxConsecutiveFailures),
		RecoveryTimeout:  cfg.RecoveryTimeout,
		RecoveryDelay:    cfg.RecoveryDelay,
		Logger:           log,
		Meter:            tp.Meter,
	})
	monitor.Register(health.ServiceConfig{Name: "api", Check: probes.CheckAPI, Critical: true})
	monitor.Register(health.ServiceConfig{Name: "bridge", Check: probes.CheckBridge, Critical: true})
	monitor.Register(health.ServiceConfig{Name: "topology-raw", Check: probes.CheckTopologyRaw, Critical: true})
	monitor.Register(health.ServiceConfig{Name: "topology-scene", Check: probes.CheckTopologyScene, Critical: true})

	if cfg.JWTSigningKey == "" {
		log.Warn().Msg("no JWT signing key configured - mutating ops endpoints are unauthenticated")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:       Version,
		Logger:        log,
		Monitor:       monitor,
		JWTSigningKey: cfg.JWTSigningKey,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops server error")
			cancel()
		}
	}()

	loopDone := make(chan error, 1)
	go func() {
		loopDone <- monitor.StartMonitoring(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-loopDone:
		if err != nil {
			log.Error().Err(err).Msg("monitoring loop failed")
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server forced to shutdown")
	}

	log.Info().Msg("health monitor stopped")
}
