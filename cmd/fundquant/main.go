package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FundQuant/internal/analysis"
	"FundQuant/internal/collector"
	"FundQuant/internal/config"
	"FundQuant/internal/logger"
	"FundQuant/internal/notifier"
	"FundQuant/internal/portfolio"
	"FundQuant/internal/recorder"
	"FundQuant/internal/scheduler"
	"FundQuant/internal/stats"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)

	log := logger.New(logger.Config{Level: levelOrDefault(cfg), Pretty: cfg != nil && cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfgPath).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", cfgPath).Msg("FundQuant starting")

	// Init fetcher
	fetcher := newFetcher(cfg, log)
	log.Info().Str("provider", fetcher.Name()).Strs("symbols", cfg.DataSource.Symbols).Msg("data source ready")

	// Init portfolio
	initial, _ := cfg.InitialValue()
	pm, err := portfolio.NewManager(cfg.Portfolio.File, initial, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init portfolio")
	}
	for ticker, amount := range cfg.Portfolio.Allocations {
		if err := pm.Allocate(ticker, decimal.RequireFromString(amount)); err != nil {
			log.Fatal().Err(err).Str("ticker", ticker).Msg("apply allocation")
		}
	}

	col := collector.NewCollector(fetcher, pm, cfg.DataSource.Symbols, cfg.DataSource.HistoryDays, log)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notify scheduler.Notifier
	if cfg.TelegramEnabled() {
		notify = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		log.Info().Msg("telegram delivery enabled")
	}

	mode := stats.Literal
	if cfg.Analysis.Corrected {
		mode = stats.Corrected
	}
	sched := scheduler.NewScheduler(ctx, col, pm, rec, scheduler.Settings{
		Analysis: analysis.Options{
			Mode:         mode,
			RiskFreeRate: cfg.Analysis.RiskFreeRate,
			Percentiles:  cfg.Analysis.Percentiles,
		},
		Weights:  cfg.Analysis.Weights,
		Bonds:    cfg.Bonds,
		Out:      os.Stdout,
		Notifier: notify,
	}, log)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing refresh now")
		go sched.RunNow()
	}

	log.Info().Str("cron", cfg.Schedule.RefreshCron).Msg("FundQuant is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
}

func newFetcher(cfg *config.Config, log zerolog.Logger) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(cfg.Proxy, log)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100}
	default:
		opts := []collector.MarketstackOption{collector.WithLogger(log)}
		if cfg.Proxy != "" {
			opts = append(opts, collector.WithProxy(cfg.Proxy))
		}
		if cfg.DataSource.BaseURL != "" {
			opts = append(opts, collector.WithBaseURL(cfg.DataSource.BaseURL))
		}
		if cfg.DataSource.RateLimit != 0 {
			opts = append(opts, collector.WithRateLimit(cfg.DataSource.RateLimit))
		}
		return collector.NewMarketstackFetcher(cfg.DataSource.APIKey, opts...)
	}
}

func levelOrDefault(cfg *config.Config) string {
	if cfg == nil {
		return "info"
	}
	return cfg.Log.Level
}
