package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"quillstream/internal/config"
	"quillstream/internal/document"
	"quillstream/internal/gateway"
	"quillstream/internal/metrics"
	"quillstream/internal/provider"
	providerfactory "quillstream/internal/provider/factory"
	"quillstream/internal/server"
)

const serveUsage = `Usage:
  quillstream serve [--config <path>] [--env <path>] [--port <port>]

Flags:
  --config string   Path to YAML configuration file (optional; environment variables override it)
  --env    string   Path to a .env file (default ".env" when present)
  --port   int      Override server port from configuration`

const defaultEnvFile = ".env"

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, serveUsage)
	}

	var cfgPath, envPath string
	var overridePort int
	fs.StringVar(&cfgPath, "config", "", "path to configuration file")
	fs.StringVar(&envPath, "env", "", "path to .env file")
	fs.IntVar(&overridePort, "port", 0, "override server port")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse serve flags: %w", err)
	}

	if envPath == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			envPath = defaultEnvFile
		}
	}

	cfg, err := config.Load(cfgPath, envPath)
	if err != nil {
		return err
	}

	if overridePort != 0 {
		if overridePort <= 0 || overridePort > 65535 {
			return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
		}
		cfg.Server.Port = overridePort
	}

	logger := config.NewLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	registry := provider.NewRegistry()
	if err := providerfactory.RegisterConfiguredProviders(cfg, registry); err != nil {
		return err
	}
	logger.Info("providers registered", "active", cfg.ActiveProvider, "available", registry.IDs())

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewRecorder(promRegistry)
	if err != nil {
		return err
	}

	var docs *document.Store
	if cfg.Documents.Path != "" {
		docs, err = document.Open(ctx, cfg.Documents.Path)
		if err != nil {
			return fmt.Errorf("open document store: %w", err)
		}
		defer docs.Close()
		logger.Info("document store ready", "path", cfg.Documents.Path)
	}

	gw := gateway.New(gateway.Options{
		Registry:       registry,
		ActiveProvider: cfg.ActiveProvider,
		Language:       cfg.Language,
		Logger:         logger,
		Metrics:        recorder,
	})

	srv, err := server.New(cfg, server.Options{
		Gateway:   gw,
		Documents: docs,
		Gatherer:  promRegistry,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}
