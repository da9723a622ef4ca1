package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/speedwagon-io/vitaldash/internal/config"
	"github.com/speedwagon-io/vitaldash/internal/dashboard"
	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/health"
	"github.com/speedwagon-io/vitaldash/internal/history"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/metrics"
	"github.com/speedwagon-io/vitaldash/internal/status"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	log := sl.SetupLogger(cfg.Log.Level, cfg.Log.Format)

	log.Info("starting vitaldash",
		slog.String("env", cfg.Env),
		slog.String("feed_url", cfg.Feed.URL),
		slog.Bool("history", cfg.History.Enabled),
	)

	roster := config.MustLoadRoster(cfg.Roster.Path)

	log.Info("loaded roster",
		slog.String("title", roster.Title),
		slog.Int("employees", len(roster.Employees)),
		slog.String("match_mode", cfg.Roster.MatchMode),
	)

	m := metrics.New()

	client := feed.NewClient(log, cfg.Feed.URL, cfg.Feed.Timeout)
	defer client.Close()

	renderer := feed.NewRenderer(log, client, m)
	normalizer := status.NewNormalizer(log, cfg.Roster.MatchMode)

	healthHandler := health.NewHandler(log)
	healthHandler.AddChecker(health.NewFeedChecker(client.Health))

	opts := []dashboard.Option{
		dashboard.WithMetrics(m),
		dashboard.WithHealth(healthHandler),
	}

	var recorder *history.Recorder
	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(log, cfg.History.Path)
		if err != nil {
			log.Error("failed to open history store", sl.Err(err))
			os.Exit(1)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close history store", sl.Err(err))
			}
		}()

		recorder, err = history.NewRecorder(log, client, store, cfg.History.Schedule, cfg.History.MaxAge, cfg.Feed.Timeout)
		if err != nil {
			log.Error("failed to create history recorder", sl.Err(err))
			os.Exit(1)
		}

		healthHandler.AddChecker(health.NewHistoryChecker(store.Count))
		opts = append(opts, dashboard.WithHistory(store, cfg.History.Limit))
		log.Info("history enabled", slog.String("path", cfg.History.Path))
	}

	server := dashboard.NewServer(log, cfg.HTTP, roster, normalizer, renderer, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	if recorder != nil {
		g.Go(func() error {
			return recorder.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("dashboard stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("dashboard stopped")
}
