package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
)

// Scheduler triggers a refresh immediately on start and then on every
// tick. A failed run is logged and the schedule keeps going.
type Scheduler struct {
	refresh  *RefreshService
	interval time.Duration
	logger   *logging.Logger
	wg       conc.WaitGroup
}

func NewScheduler(refresh *RefreshService, interval time.Duration, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{
		refresh:  refresh,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the refresh loop. It returns immediately; cancel the
// context and call Wait to shut down.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Go(func() { s.run(ctx) })
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.refresh.Refresh(ctx)
	if err != nil {
		if errors.Is(err, ErrRefreshInProgress) {
			s.logger.DebugContext(ctx, "scheduled refresh skipped, another run in progress")
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.logger.WarnContext(ctx, "scheduled refresh failed", "error", err)
		return
	}
	s.logger.DebugContext(ctx, "scheduled refresh finished",
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
	)
}
