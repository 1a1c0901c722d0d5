package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ncaam_v1/scraper/internal/config"
	"ncaam_v1/scraper/internal/espn"
	"ncaam_v1/scraper/internal/metrics"
	"ncaam_v1/scraper/internal/publisher"
	"ncaam_v1/scraper/internal/runner"
	"ncaam_v1/scraper/internal/scheduler"
	"ncaam_v1/scraper/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	setupLogger()

	log.Info().Msg("Starting NCAAM v1.0 Scrape Worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Str("storage", cfg.StorageBackend).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	stores, cleanup, err := store.Factory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer cleanup()

	var pub runner.Publisher
	if cfg.RedisEnabled {
		redisPub, err := publisher.NewRedisStreamPublisher(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without publishing")
		} else {
			defer redisPub.Close()
			pub = redisPub
		}
	}

	provider := espn.NewProvider(cfg.ESPNBaseURL, cfg.ESPNAPIBaseURL, cfg.FetchTimeout, cfg.FetchRetries)
	log.Info().Str("provider", provider.Name()).Msg("Provider initialized")

	run := runner.New(ctx, provider, stores, cfg.DataRoot, cfg.FetchDelay, pub)

	if cfg.EnableMetrics {
		go startMetricsServer(strconv.Itoa(cfg.MetricsPort))
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg, run)
	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Initial pass for today so a fresh worker has data before the first
	// tick fires.
	if err := run.RunDate(ctx, time.Now(), false); err != nil {
		log.Error().Err(err).Msg("Initial scrape pass failed, continuing anyway...")
	} else {
		metrics.RecordRunComplete()
	}

	<-ctx.Done()

	log.Info().Msg("Shutting down scheduler...")
	if cfg.EnableScheduler {
		sched.Stop()
	}

	// Flush whatever the scheduler was holding when the signal arrived.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer flushCancel()
	run.FlushAll(flushCtx)

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port string) {
	http.Handle("/metrics", promhttp.Handler())

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%s", port)
	log.Info().Str("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
