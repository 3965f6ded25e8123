package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/bondcalc/internal/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the valuation API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	log := e.log
	defer log.Sync()

	metricsPath := ""
	if e.cfg.Metrics.Enabled {
		metricsPath = e.cfg.Metrics.Path
	}

	log.Info("starting bondcalc server",
		zap.String("host", e.cfg.Server.Host),
		zap.Int("port", e.cfg.Server.Port),
		zap.String("method", e.cfg.Valuation.Method),
	)

	// Create API server
	server, err := api.NewServer(api.Config{
		Host:         e.cfg.Server.Host,
		Port:         e.cfg.Server.Port,
		APIKey:       e.cfg.Server.APIKey,
		MaxBodyBytes: e.cfg.Server.MaxBodyBytes,
		MetricsPath:  metricsPath,
	}, api.Dependencies{
		Calculators: e.calculators,
		Book:        e.book,
		Store:       e.store,
		Metrics:     e.metrics,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start server in goroutine
	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errc:
		if err != nil {
			return err
		}
	}

	log.Info("shutting down bondcalc server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
