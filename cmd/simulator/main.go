package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/levery-org/levery-market-simulation/config"
	"github.com/levery-org/levery-market-simulation/internal/adapters/chainlink"
	"github.com/levery-org/levery-market-simulation/internal/adapters/notify"
	"github.com/levery-org/levery-market-simulation/internal/adapters/report"
	"github.com/levery-org/levery-market-simulation/internal/adapters/storage"
	"github.com/levery-org/levery-market-simulation/internal/adapters/subgraph"
	"github.com/levery-org/levery-market-simulation/internal/domain"
	"github.com/levery-org/levery-market-simulation/internal/ports"
	"github.com/levery-org/levery-market-simulation/internal/retry"
	"github.com/levery-org/levery-market-simulation/internal/simulation"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	hours := flag.Int("hours", 0, "lookback window in hours (overrides config)")
	noCache := flag.Bool("no-cache", false, "skip the durable round cache")
	table := flag.Bool("table", false, "print full per-swap table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *hours > 0 {
		cfg.Simulation.WindowHours = *hours
	}
	setupLogger(cfg.Log)

	slog.Info("levery simulation starting",
		"config", *configPath,
		"pool", cfg.Sources.PoolID,
		"feed", cfg.Sources.FeedAddress,
		"window_hours", cfg.Simulation.WindowHours,
		"no_cache", *noCache,
	)

	policy := retry.Policy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.RetryDelay(),
		Timeout:  cfg.RetryTimeout(),
	}
	swaps := subgraph.NewClient(cfg.Sources.SubgraphURL, cfg.Sources.PoolID, policy)
	feed := chainlink.NewFeed(cfg.Sources.RPCURL, cfg.Sources.FeedAddress, policy)

	var roundStore ports.RoundStore
	if !*noCache {
		store, err := storage.NewSQLiteRoundStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open round cache", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
		roundStore = store
	}

	sink, err := report.NewJSONSink(cfg.Storage.OutputDir)
	if err != nil {
		slog.Error("failed to prepare output dir", "err", err, "dir", cfg.Storage.OutputDir)
		os.Exit(1)
	}

	simCfg := simulation.DefaultConfig()
	simCfg.WindowHours = cfg.Simulation.WindowHours
	simCfg.HistoryMargin = cfg.Simulation.HistoryMargin
	simCfg.PageSize = cfg.Simulation.PageSize
	simCfg.Fees = domain.FeeModel{
		BaseFeePct:          decimal.NewFromFloat(cfg.Fees.BaseFeePct),
		DeviationMultiplier: decimal.NewFromFloat(cfg.Fees.DeviationMultiplier),
		StandardFeePct:      decimal.NewFromFloat(cfg.Fees.StandardFeePct),
	}

	sim := simulation.New(simCfg, swaps, feed, roundStore, sink, notify.NewConsole(*table))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := sim.Run(ctx); err != nil {
		slog.Error("simulation failed", "err", err)
		os.Exit(1)
	}

	slog.Info("simulation finished cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
