package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rxtx-hosting/steamviz/internal/config"
	"github.com/rxtx-hosting/steamviz/pkg/choropleth"
	"github.com/rxtx-hosting/steamviz/pkg/dataset"
	"github.com/rxtx-hosting/steamviz/pkg/exporter"
	"github.com/rxtx-hosting/steamviz/pkg/locale"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
	serverAddr = flag.String("addr", "", "Address to serve the page and API on (overrides config)")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))

	if *serverAddr != "" {
		cfg.ServerAddr = *serverAddr
	}

	// both already checked by config.Validate
	loc, _ := locale.Parse(cfg.Locale)
	metric, _ := choropleth.ParseMetric(cfg.DefaultMetric)

	slog.Info("Starting steamviz", "addr", cfg.ServerAddr, "locale", loc, "metric", metric)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bundle, err := dataset.LoadBundle(ctx, cfg.Paths())
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}

	apiServer := exporter.NewAPIServer(cfg.APIKey, loc, metric, cfg.CORSOrigins)
	if err := apiServer.UpdateDatasets(bundle); err != nil {
		log.Fatalf("Failed to render datasets: %v", err)
	}

	var promExporter *exporter.PrometheusExporter
	if cfg.PrometheusAddr != "" {
		promExporter = exporter.NewPrometheusExporter(nil)
		promExporter.UpdateStats(bundle)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting API server", "address", cfg.ServerAddr)
		return apiServer.StartServer(gCtx, cfg.ServerAddr)
	})

	if promExporter != nil {
		g.Go(func() error {
			slog.Info("Starting Prometheus server", "address", cfg.PrometheusAddr)
			return promExporter.StartServer(gCtx, cfg.PrometheusAddr)
		})
	}

	g.Go(func() error {
		reloadTicker := time.NewTicker(cfg.ReloadInterval)
		defer reloadTicker.Stop()

		for {
			select {
			case <-gCtx.Done():
				slog.Info("Received shutdown signal, cleaning up...")
				return nil

			case <-reloadTicker.C:
				next, err := dataset.LoadBundle(gCtx, cfg.Paths())
				if err != nil {
					slog.Error("Error reloading datasets, keeping previous", "error", err)
					continue
				}
				if err := apiServer.UpdateDatasets(next); err != nil {
					slog.Error("Error rendering reloaded datasets", "error", err)
					continue
				}
				if promExporter != nil {
					promExporter.UpdateStats(next)
				}
				slog.Info("Datasets reloaded", "countries", len(next.Traffic), "samples", len(next.Players))
			}
		}
	})

	slog.Info("steamviz started successfully")

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
