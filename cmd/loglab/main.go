package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coffersTech/loglab/internal/config"
	"github.com/coffersTech/loglab/internal/logging"
	"github.com/coffersTech/loglab/internal/server"
	"github.com/coffersTech/loglab/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracing, err := telemetry.Setup(cfg.ServiceName)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	reg := prometheus.NewRegistry()
	metrics := logging.NewMetrics(reg)

	pipeline := logging.New()
	pipeline.Configure(logging.Options{
		JSONOutput: cfg.JSONOutput,
		MinLevel:   logging.ParseLevel(cfg.LogLevel),
		Metrics:    metrics,
	})
	// Safety net: drain the sink even if the ordered shutdown below is
	// skipped. Stop is idempotent, so the double call is fine.
	defer pipeline.Stop()

	logger := pipeline.Logger("loglab")
	logger.Info(context.Background(), "Application started",
		logging.F("addr", cfg.Addr),
		logging.F("json_output", cfg.JSONOutput),
		logging.F("log_level", logging.ParseLevel(cfg.LogLevel).String()),
	)

	srv := server.New(cfg, pipeline, reg)
	go func() {
		if err := srv.Start(cfg.Addr); err != nil {
			logger.Error(context.Background(), "Server stopped", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(context.Background(), "Received signal, shutting down", logging.F("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "Server shutdown failed", logging.Err(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Error(context.Background(), "Tracer shutdown failed", logging.Err(err))
	}

	logger.Info(context.Background(), "Application shutting down")
	pipeline.Stop()
}
