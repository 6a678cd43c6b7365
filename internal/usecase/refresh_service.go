package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
)

// FixtureSource produces the current fixture listing from the upstream
// site, along with the number of blocks that could not be extracted.
type FixtureSource interface {
	FetchFixtures(ctx context.Context) ([]fixture.Record, int, error)
}

type RefreshSummary struct {
	Inserted  int           `json:"inserted"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration_ns"`
}

type HealthStatus struct {
	FixtureCount   int        `json:"fixture_count"`
	RefreshRunning bool       `json:"refresh_running"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastSuccessAt  *time.Time `json:"last_success_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// RefreshService pulls the upstream listing and reconciles it into the
// repository. Only one refresh runs at a time; overlapping calls get
// ErrRefreshInProgress instead of queueing.
type RefreshService struct {
	source FixtureSource
	repo   fixture.Repository
	logger *logging.Logger
	now    func() time.Time

	running atomic.Bool

	mu            sync.Mutex
	lastRunAt     *time.Time
	lastSuccessAt *time.Time
	lastError     string
}

func NewRefreshService(source FixtureSource, repo fixture.Repository, logger *logging.Logger) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		source: source,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *RefreshService) Refresh(ctx context.Context) (RefreshSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "RefreshService.Refresh")
	defer span.End()

	if !s.running.CompareAndSwap(false, true) {
		return RefreshSummary{}, ErrRefreshInProgress
	}
	defer s.running.Store(false)

	startedAt := s.now()
	s.recordRun(startedAt)

	records, skipped, err := s.source.FetchFixtures(ctx)
	if err != nil {
		s.recordFailure(err)
		if errors.Is(err, fixture.ErrUnrecognizedListing) {
			return RefreshSummary{}, fmt.Errorf("%w: %v", ErrSourceUnrecognized, err)
		}
		return RefreshSummary{}, fmt.Errorf("%w: fetch fixtures: %v", ErrDependencyUnavailable, err)
	}

	result, err := s.repo.Upsert(ctx, records)
	if err != nil {
		s.recordFailure(err)
		return RefreshSummary{}, fmt.Errorf("store fixtures: %w", err)
	}

	summary := RefreshSummary{
		Inserted:  result.Inserted,
		Updated:   result.Updated,
		Unchanged: result.Unchanged,
		Skipped:   skipped,
		Duration:  s.now().Sub(startedAt),
	}
	s.recordSuccess(s.now())

	s.logger.InfoContext(ctx, "fixtures refresh completed",
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"unchanged", summary.Unchanged,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, nil
}

func (s *RefreshService) Health(ctx context.Context) (HealthStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "RefreshService.Health")
	defer span.End()

	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("count fixtures: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return HealthStatus{
		FixtureCount:   count,
		RefreshRunning: s.running.Load(),
		LastRunAt:      s.lastRunAt,
		LastSuccessAt:  s.lastSuccessAt,
		LastError:      s.lastError,
	}, nil
}

func (s *RefreshService) recordRun(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := at
	s.lastRunAt = &t
}

func (s *RefreshService) recordSuccess(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := at
	s.lastSuccessAt = &t
	s.lastError = ""
}

func (s *RefreshService) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
}
