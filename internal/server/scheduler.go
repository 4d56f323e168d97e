package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// rebuildScheduler triggers periodic rebuilds independent of filesystem
// events, so remote content sources are picked up without a local change.
type rebuildScheduler struct {
	scheduler gocron.Scheduler
	interval  time.Duration
}

func newRebuildScheduler(interval time.Duration, rebuildCh chan<- string) (*rebuildScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			select {
			case rebuildCh <- "scheduled rebuild":
			default:
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}

	return &rebuildScheduler{scheduler: s, interval: interval}, nil
}

func (rs *rebuildScheduler) start() {
	slog.Info("Periodic rebuild enabled", slog.Duration("interval", rs.interval))
	rs.scheduler.Start()
}

func (rs *rebuildScheduler) stop() error {
	return rs.scheduler.Shutdown()
}
