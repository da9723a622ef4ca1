package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/lib/logger/sl"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

// Recorder samples the feed on a cron schedule and keeps each successful
// fetch as a snapshot. It runs beside the dashboard and never touches the
// per-request render passes.
type Recorder struct {
	log      *slog.Logger
	source   feed.Source
	store    Store
	schedule cron.Schedule
	spec     string
	maxAge   time.Duration
	timeout  time.Duration
}

func NewRecorder(
	log *slog.Logger,
	source feed.Source,
	store Store,
	spec string,
	maxAge time.Duration,
	timeout time.Duration,
) (*Recorder, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", spec, err)
	}

	return &Recorder{
		log:      log,
		source:   source,
		store:    store,
		schedule: schedule,
		spec:     spec,
		maxAge:   maxAge,
		timeout:  timeout,
	}, nil
}

// Run records once immediately, then on every tick of the schedule until
// ctx is cancelled.
func (r *Recorder) Run(ctx context.Context) error {
	r.log.Info("starting history recorder", slog.String("schedule", r.spec))

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(r.schedule, cron.FuncJob(func() {
		if err := r.RecordOnce(ctx); err != nil {
			r.log.Warn("failed to record snapshot", sl.Err(err))
		}
	}))

	if err := r.RecordOnce(ctx); err != nil {
		r.log.Warn("failed to record snapshot", sl.Err(err))
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	r.log.Info("history recorder stopped")
	return nil
}

// RecordOnce fetches the feed, stores the snapshot and prunes old ones.
func (r *Recorder) RecordOnce(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	readings, err := r.source.Fetch(fetchCtx)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	table := feed.RenderReadings(readings)
	snapshot := model.NewSnapshot(readings, table.Counts())

	if err := r.store.Store(ctx, snapshot); err != nil {
		return err
	}

	if r.maxAge > 0 {
		if err := r.store.Cleanup(ctx, r.maxAge); err != nil {
			r.log.Error("failed to cleanup old snapshots", sl.Err(err))
		}
	}

	return nil
}
