package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/events"
	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/intents"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
	"github.com/greenbot-eco/greenbot/internal/webhook"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	// Bootstrap logger until the configured one exists.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	loader := config.NewLoader(*configPath, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	logger = telemetry.NewLogger(os.Stdout, cfg.Telemetry.LogLevel, cfg.Telemetry.LogFormat)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	loc, err := time.LoadLocation(cfg.Events.Timezone)
	if err != nil {
		logger.Error("invalid events timezone", "timezone", cfg.Events.Timezone, "error", err)
		os.Exit(1)
	}

	catalog, cleanup, err := buildCatalog(context.Background(), loader, logger)
	if err != nil {
		logger.Error("failed to build event catalog", "source", cfg.Events.Source, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	dispatcher := intents.NewDispatcher(catalog, time.Now, loc)
	handler := webhook.NewHandler(dispatcher, metrics, logger, "webhook")

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestID)

	// Mounted for every method so non-POST requests get the JSON 405.
	r.Handle("/api/dialogflow", handler)
	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("webhook starting",
			"addr", srv.Addr,
			"version", version,
			"environment", cfg.Environment,
			"events_source", cfg.Events.Source,
			"timezone", loc.String(),
		)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("webhook stopped")
}

// buildCatalog returns the event catalog selected by events.source and a
// cleanup func releasing its resources.
func buildCatalog(ctx context.Context, loader *config.Loader, logger *slog.Logger) (events.Catalog, func(), error) {
	cfg := loader.Config()
	switch cfg.Events.Source {
	case config.EventsSourceFile:
		cities, err := events.LoadFile(cfg.Events.File)
		if err != nil {
			return nil, nil, err
		}
		catalog := events.NewStaticCatalog(cities)
		logger.Info("event catalog loaded", "file", cfg.Events.File, "cities", catalog.Cities())
		loader.OnReload(func() {
			path := loader.Config().Events.File
			cities, err := events.LoadFile(path)
			if err != nil {
				logger.Error("event catalog reload failed, keeping previous", "file", path, "error", err)
				return
			}
			catalog.Replace(cities)
			logger.Info("event catalog reloaded", "file", path, "cities", catalog.Cities())
		})
		return catalog, func() {}, nil

	case config.EventsSourcePostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database url: %w", err)
		}
		if cfg.Database.MaxConns > 0 {
			poolCfg.MaxConns = cfg.Database.MaxConns
		}
		if cfg.Database.ConnMaxLifetime > 0 {
			poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Warn("database not reachable (events intent will answer with the apology)", "error", err)
		} else {
			logger.Info("database connected")
		}
		return events.NewPostgresCatalog(pool), pool.Close, nil

	default:
		catalog := events.NewStaticCatalog(events.DefaultCities())
		logger.Info("event catalog loaded", "source", "static", "cities", catalog.Cities())
		return catalog, func() {}, nil
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"version": version,
	})
}
