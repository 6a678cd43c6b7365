package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

// FixtureRepository is an in-memory stand-in with the same upsert and
// filter semantics as the SQLite implementation.
type FixtureRepository struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]fixture.Record
	byKey   map[fixture.Key]int64
	now     func() time.Time
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{
		nextID:  1,
		records: make(map[int64]fixture.Record),
		byKey:   make(map[fixture.Key]int64),
		now:     time.Now,
	}
}

func (r *FixtureRepository) Upsert(_ context.Context, records []fixture.Record) (fixture.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result fixture.UpsertResult
	ingestedAt := r.now().UTC()
	for _, record := range records {
		key := record.Key()
		id, exists := r.byKey[key]
		if !exists {
			record.ID = r.nextID
			record.IngestedAt = ingestedAt
			r.records[record.ID] = record
			r.byKey[key] = record.ID
			r.nextID++
			result.Inserted++
			continue
		}

		current := r.records[id]
		if current.Venue == record.Venue && current.Referee == record.Referee && current.RawMarkup == record.RawMarkup {
			result.Unchanged++
			continue
		}
		current.Venue = record.Venue
		current.Referee = record.Referee
		current.RawMarkup = record.RawMarkup
		r.records[id] = current
		result.Updated++
	}

	return result, nil
}

func (r *FixtureRepository) GetByID(_ context.Context, id int64) (fixture.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	return record, ok, nil
}

func (r *FixtureRepository) List(_ context.Context, filter fixture.Filter) ([]fixture.Record, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]fixture.Record, 0, len(r.records))
	for _, record := range r.records {
		if filter.DateFrom != "" && record.DateKey < filter.DateFrom {
			continue
		}
		if filter.Competition != "" && record.Competition != filter.Competition {
			continue
		}
		if filter.Venue != "" && !strings.Contains(strings.ToLower(record.Venue), strings.ToLower(filter.Venue)) {
			continue
		}
		matched = append(matched, record)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].DateKey != matched[j].DateKey {
			return matched[i].DateKey < matched[j].DateKey
		}
		if matched[i].TimeText != matched[j].TimeText {
			return matched[i].TimeText < matched[j].TimeText
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]fixture.Record, len(matched))
	copy(out, matched)
	return out, total, nil
}

func (r *FixtureRepository) DistinctCompetitions(_ context.Context) ([]string, error) {
	return r.distinct(func(record fixture.Record) string { return record.Competition }), nil
}

func (r *FixtureRepository) DistinctVenues(_ context.Context) ([]string, error) {
	return r.distinct(func(record fixture.Record) string { return record.Venue }), nil
}

func (r *FixtureRepository) distinct(value func(fixture.Record) string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(r.records))
	for _, record := range r.records {
		v := value(record)
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (r *FixtureRepository) CountAll(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records), nil
}
