package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/evdnx/smacross/config"
	"github.com/evdnx/smacross/executor"
	"github.com/evdnx/smacross/feed"
	"github.com/evdnx/smacross/logger"
	"github.com/evdnx/smacross/runner"
	"github.com/evdnx/smacross/strategy"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "smacross:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "path to YAML config")
	csvPath := flag.String("csv", "", "bar CSV to replay (overrides feed.path)")
	useBinance := flag.Bool("binance", false, "fetch klines from Binance instead of a CSV")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *csvPath != "" {
		cfg.Feed.Kind, cfg.Feed.Path = "csv", *csvPath
	}
	if *useBinance {
		cfg.Feed.Kind = "binance"
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewZapLogger(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics_server_failed", logger.Err(err))
			}
		}()
		defer srv.Close()
	}

	src, err := openFeed(cfg)
	if err != nil {
		return err
	}

	exec := executor.NewPaperExecutor(cfg.Account.StartingCash, log)
	strat, err := strategy.NewMACrossover(cfg.Strategy, exec, log)
	if err != nil {
		return err
	}

	log.Info("run_started",
		logger.String("symbol", cfg.Strategy.Symbol),
		logger.String("feed", cfg.Feed.Kind),
		logger.Int("fast_window", cfg.Strategy.FastWindow),
		logger.Int("slow_window", cfg.Strategy.SlowWindow),
		logger.Int("warmup_bars", cfg.Strategy.WarmupBars()),
		logger.Float64("starting_cash", cfg.Account.StartingCash),
		logger.String("currency", cfg.Account.Currency),
	)

	sum, err := runner.Run(ctx, src, strat, log)
	log.Info("run_finished",
		logger.Int("bars", sum.Bars),
		logger.Int("rejected", sum.Rejected),
		logger.Int("enters", sum.Enters),
		logger.Int("exits", sum.Exits),
		logger.Int("failed", sum.Failed),
		logger.Float64("cash", sum.Cash),
		logger.Float64("position", sum.Position),
		logger.Float64("last_price", sum.Last.Close),
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func openFeed(cfg config.Config) (feed.Source, error) {
	switch cfg.Feed.Kind {
	case "binance":
		start, err := time.Parse(time.RFC3339, cfg.Feed.Start)
		if err != nil {
			return nil, fmt.Errorf("feed.start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, cfg.Feed.End)
		if err != nil {
			return nil, fmt.Errorf("feed.end: %w", err)
		}
		client := binance.NewClient("", "")
		return feed.NewBinanceSource(client, cfg.Strategy.Symbol, cfg.Feed.Interval, start, end), nil
	default:
		return feed.OpenCSV(cfg.Feed.Path)
	}
}
