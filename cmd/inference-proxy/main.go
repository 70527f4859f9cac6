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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/greenbot-eco/greenbot/internal/config"
	"github.com/greenbot-eco/greenbot/internal/filter"
	"github.com/greenbot-eco/greenbot/internal/filter/injection"
	"github.com/greenbot-eco/greenbot/internal/filter/secrets"
	"github.com/greenbot-eco/greenbot/internal/httputil"
	"github.com/greenbot-eco/greenbot/internal/proxy"
	"github.com/greenbot-eco/greenbot/internal/ratelimit"
	"github.com/greenbot-eco/greenbot/internal/telemetry"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

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

	// Connect to Redis
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis not reachable (rate limiting disabled)", "error", err)
			rdb.Close()
			rdb = nil
		} else {
			logger.Info("redis connected")
			defer rdb.Close()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	filterChain := filter.NewChain(
		secrets.NewScanner(func() config.SecretsFilterConfig { return loader.Config().Filter.Secrets }),
		injection.NewScanner(func() config.InjectionFilterConfig { return loader.Config().Filter.Injection }),
	)
	handler := proxy.NewHandler(loader.Config, nil, filterChain, metrics, logger)

	limiter := ratelimit.NewLimiter(rdb, func() config.RateLimitConfig { return loader.Config().RateLimit })

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httputil.RequestID)

	r.Get("/api/health", handler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/llm", func(r chi.Router) {
		r.Get("/status", handler.Status)
		r.Get("/models", handler.Models)
		r.With(ratelimit.Middleware(limiter, metrics, "chat")).Post("/chat", handler.Chat)
		r.With(ratelimit.Middleware(limiter, metrics, "test-parameters")).Post("/test-parameters", handler.TestParameters)
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inference proxy starting",
			"addr", srv.Addr,
			"version", version,
			"environment", cfg.Environment,
			"ollama_url", cfg.Ollama.BaseURL,
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
	logger.Info("inference proxy stopped")
}
