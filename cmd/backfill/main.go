// Command backfill scrapes a historical date range in one shot and exits.
// It shares the runner, storage, and completion logs with the worker, so a
// backfill and the live worker never redo each other's dates.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ncaam_v1/scraper/internal/config"
	"ncaam_v1/scraper/internal/espn"
	"ncaam_v1/scraper/internal/ncaa"
	"ncaam_v1/scraper/internal/runner"
	"ncaam_v1/scraper/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

func main() {
	var (
		dateFlag     = flag.String("date", "", "single date to scrape (YYYY-MM-DD)")
		startFlag    = flag.String("start", "", "range start date (YYYY-MM-DD)")
		endFlag      = flag.String("end", "", "range end date (YYYY-MM-DD, defaults to today)")
		providerFlag = flag.String("provider", "espn", "data provider: espn or ncaa")
		forceFlag    = flag.Bool("force", false, "re-scrape dates already marked complete")
	)
	flag.Parse()

	setupLogger()
	cfg := config.MustLoad()

	start, end, err := resolveRange(*dateFlag, *startFlag, *endFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid date arguments")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, finishing current date...")
		cancel()
	}()

	var provider runner.Provider
	switch *providerFlag {
	case "espn":
		provider = espn.NewProvider(cfg.ESPNBaseURL, cfg.ESPNAPIBaseURL, cfg.FetchTimeout, cfg.FetchRetries)
	case "ncaa":
		provider = ncaa.NewProvider(cfg.NCAABaseURL, cfg.FetchTimeout, cfg.FetchRetries)
	default:
		log.Fatal().Str("provider", *providerFlag).Msg("Unknown provider")
	}

	stores, cleanup, err := store.Factory(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer cleanup()

	run := runner.New(ctx, provider, stores, cfg.DataRoot, cfg.FetchDelay, nil)

	log.Info().
		Str("provider", provider.Name()).
		Str("start", start.Format(dateLayout)).
		Str("end", end.Format(dateLayout)).
		Bool("force", *forceFlag).
		Msg("Starting backfill")

	began := time.Now()
	if err := run.RunRange(ctx, start, end, *forceFlag); err != nil {
		run.FlushAll(context.Background())
		log.Fatal().Err(err).Msg("Backfill aborted")
	}
	run.FlushAll(ctx)

	log.Info().
		Dur("duration", time.Since(began)).
		Msg("Backfill complete")
}

// resolveRange turns the flag combination into a concrete [start, end]. A
// bare -date wins over -start/-end; no flags means today only.
func resolveRange(date, start, end string) (time.Time, time.Time, error) {
	today := time.Now().Truncate(24 * time.Hour)

	if date != "" {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return d, d, nil
	}

	if start == "" {
		return today, today, nil
	}

	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	e := today
	if end != "" {
		if e, err = time.Parse(dateLayout, end); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return s, e, nil
}

func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}
