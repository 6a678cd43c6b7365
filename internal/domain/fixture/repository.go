package fixture

import "context"

// Repository exposes fixture persistence operations.
type Repository interface {
	// Upsert inserts records whose natural key is new and updates only
	// venue/referee/raw_markup on key conflicts. The whole batch commits
	// atomically: readers never observe a partially ingested refresh.
	Upsert(ctx context.Context, records []Record) (UpsertResult, error)

	// GetByID reports absence through the bool, not an error.
	GetByID(ctx context.Context, id int64) (Record, bool, error)

	// List returns matching records ordered by (date_key, time_text)
	// with limit/offset applied after ordering, plus the total match
	// count before pagination.
	List(ctx context.Context, filter Filter) ([]Record, int, error)

	DistinctCompetitions(ctx context.Context) ([]string, error)
	DistinctVenues(ctx context.Context) ([]string, error)
	CountAll(ctx context.Context) (int, error)
}
