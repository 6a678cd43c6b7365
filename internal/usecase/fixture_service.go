package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

const defaultListLimit = 50

var validate = validator.New(validator.WithRequiredStructEnabled())

// CalendarGenerator renders a set of fixtures as an iCalendar document.
type CalendarGenerator interface {
	Generate(records []fixture.Record) []byte
}

type ListFixturesParams struct {
	Limit       int    `validate:"gte=0,lte=500"`
	Offset      int    `validate:"gte=0"`
	IncludePast bool
	Venue       string
	Competition string
}

type ListFixturesResult struct {
	Fixtures []fixture.Record `json:"fixtures"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type FixtureService struct {
	repo     fixture.Repository
	calendar CalendarGenerator
	now      func() time.Time
}

func NewFixtureService(repo fixture.Repository, calendar CalendarGenerator) *FixtureService {
	return &FixtureService{
		repo:     repo,
		calendar: calendar,
		now:      time.Now,
	}
}

// todayKey is the past-fixture cutoff. Fixtures carry calendar dates
// with no zone, so the cutoff follows the server's local date rather
// than UTC.
func (s *FixtureService) todayKey() string {
	return s.now().Format("2006-01-02")
}

// ListFixtures returns fixtures ordered by date and throw-in time. Past
// fixtures are excluded unless IncludePast is set.
func (s *FixtureService) ListFixtures(ctx context.Context, params ListFixturesParams) (ListFixturesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.ListFixtures")
	defer span.End()

	if err := validate.Struct(params); err != nil {
		return ListFixturesResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if params.Limit == 0 {
		params.Limit = defaultListLimit
	}

	filter := fixture.Filter{
		Competition: strings.TrimSpace(params.Competition),
		Venue:       strings.TrimSpace(params.Venue),
		Limit:       params.Limit,
		Offset:      params.Offset,
	}
	if !params.IncludePast {
		filter.DateFrom = s.todayKey()
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return ListFixturesResult{}, fmt.Errorf("list fixtures: %w", err)
	}

	return ListFixturesResult{
		Fixtures: records,
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func (s *FixtureService) GetFixture(ctx context.Context, id int64) (fixture.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.GetFixture")
	defer span.End()

	if id <= 0 {
		return fixture.Record{}, fmt.Errorf("%w: fixture id must be greater than zero", ErrInvalidInput)
	}

	record, exists, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fixture.Record{}, fmt.Errorf("get fixture: %w", err)
	}
	if !exists {
		return fixture.Record{}, fmt.Errorf("%w: fixture=%d", ErrNotFound, id)
	}
	return record, nil
}

func (s *FixtureService) ListVenues(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.ListVenues")
	defer span.End()

	venues, err := s.repo.DistinctVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

func (s *FixtureService) ListCompetitions(ctx context.Context) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.ListCompetitions")
	defer span.End()

	competitions, err := s.repo.DistinctCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return competitions, nil
}

type CalendarFeedParams struct {
	IncludePast bool
	Venue       string
	Competition string
}

// CalendarFeed renders matching fixtures as an iCalendar document. Past
// fixtures are excluded unless IncludePast is set.
func (s *FixtureService) CalendarFeed(ctx context.Context, params CalendarFeedParams) ([]byte, error) {
	ctx, span := startUsecaseSpan(ctx, "FixtureService.CalendarFeed")
	defer span.End()

	filter := fixture.Filter{
		Competition: strings.TrimSpace(params.Competition),
		Venue:       strings.TrimSpace(params.Venue),
	}
	if !params.IncludePast {
		filter.DateFrom = s.todayKey()
	}

	records, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list fixtures for calendar: %w", err)
	}
	return s.calendar.Generate(records), nil
}
