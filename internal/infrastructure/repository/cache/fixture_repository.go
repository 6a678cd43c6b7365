package cache

import (
	"context"
	"strconv"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	basecache "github.com/tullogher/gaa-fixtures/internal/platform/cache"
)

// FixtureRepository caches reads in front of the persistent repository.
// Every successful Upsert flushes the cached entries, so readers never
// see data older than the last refresh plus the store TTL.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store
}

func NewFixtureRepository(next fixture.Repository, cache *basecache.Store) *FixtureRepository {
	return &FixtureRepository{next: next, cache: cache}
}

func (r *FixtureRepository) Upsert(ctx context.Context, records []fixture.Record) (fixture.UpsertResult, error) {
	result, err := r.next.Upsert(ctx, records)
	if err != nil {
		return fixture.UpsertResult{}, err
	}
	if result.Inserted > 0 || result.Updated > 0 {
		r.cache.Flush(ctx)
	}
	return result, nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id int64) (fixture.Record, bool, error) {
	key := "fixture:id:" + strconv.FormatInt(id, 10)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		record, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedFixtureByID{value: record, exists: exists}, nil
	})
	if err != nil {
		return fixture.Record{}, false, err
	}

	cached, _ := v.(cachedFixtureByID)
	return cached.value, cached.exists, nil
}

type cachedFixtureByID struct {
	value  fixture.Record
	exists bool
}

func (r *FixtureRepository) List(ctx context.Context, filter fixture.Filter) ([]fixture.Record, int, error) {
	key := "fixture:list:" + filter.DateFrom + ":" + filter.Competition + ":" + filter.Venue +
		":" + strconv.Itoa(filter.Limit) + ":" + strconv.Itoa(filter.Offset)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		records, total, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return cachedFixtureList{records: append([]fixture.Record(nil), records...), total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}

	cached, _ := v.(cachedFixtureList)
	return append([]fixture.Record(nil), cached.records...), cached.total, nil
}

type cachedFixtureList struct {
	records []fixture.Record
	total   int
}

func (r *FixtureRepository) DistinctCompetitions(ctx context.Context) ([]string, error) {
	return r.cachedStrings(ctx, "fixture:competitions", r.next.DistinctCompetitions)
}

func (r *FixtureRepository) DistinctVenues(ctx context.Context) ([]string, error) {
	return r.cachedStrings(ctx, "fixture:venues", r.next.DistinctVenues)
}

func (r *FixtureRepository) cachedStrings(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]string(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]string)
	return append([]string(nil), items...), nil
}

func (r *FixtureRepository) CountAll(ctx context.Context) (int, error) {
	v, err := r.cache.GetOrLoad(ctx, "fixture:count", func(ctx context.Context) (any, error) {
		total, err := r.next.CountAll(ctx)
		if err != nil {
			return nil, err
		}
		return total, nil
	})
	if err != nil {
		return 0, err
	}

	total, _ := v.(int)
	return total, nil
}
