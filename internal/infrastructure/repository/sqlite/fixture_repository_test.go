package sqlite

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

func newTestRepository(t *testing.T) *FixtureRepository {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, MigrateUp(db))
	return NewFixtureRepository(db)
}

func sampleRecord() fixture.Record {
	return fixture.Record{
		DateText:    "Sunday 15th Jun 2025",
		DateKey:     "2025-06-15",
		Competition: "Senior Hurling League Division 1",
		HomeTeam:    "Tullogher Rosbercon",
		AwayTeam:    "Glenmore",
		TimeText:    "14:00",
		Venue:       "Tullogher Park",
		Referee:     "J. Murphy",
		RawMarkup:   "<div class=\"competition\">...</div>",
	}
}

func TestUpsertInsertsNewRecords(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	result, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)
	require.Equal(t, fixture.UpsertResult{Inserted: 1}, result)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)

	result, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)
	require.Equal(t, fixture.UpsertResult{Unchanged: 1}, result)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestUpsertUpdatesMutableFields(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)

	changed := sampleRecord()
	changed.Venue = "Glenmore Pitch"
	changed.Referee = "P. Walsh"

	result, err := repo.Upsert(ctx, []fixture.Record{changed})
	require.NoError(t, err)
	require.Equal(t, fixture.UpsertResult{Updated: 1}, result)

	records, total, err := repo.List(ctx, fixture.Filter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Glenmore Pitch", records[0].Venue)
	require.Equal(t, "P. Walsh", records[0].Referee)
}

func TestUpsertTreatsDifferentTimeAsNewRow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)

	rescheduled := sampleRecord()
	rescheduled.TimeText = "17:00"

	result, err := repo.Upsert(ctx, []fixture.Record{rescheduled})
	require.NoError(t, err)
	require.Equal(t, fixture.UpsertResult{Inserted: 1}, result)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestUpsertKeepsRowsMissingFromLaterBatch(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	kept := sampleRecord()
	dropped := sampleRecord()
	dropped.DateText = "Saturday 21st Jun 2025"
	dropped.DateKey = "2025-06-21"
	dropped.HomeTeam = "Mullinavat"
	dropped.Venue = "Mullinavat GAA Grounds"

	_, err := repo.Upsert(ctx, []fixture.Record{kept, dropped})
	require.NoError(t, err)

	records, _, err := repo.List(ctx, fixture.Filter{DateFrom: "2025-06-21"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	droppedID := records[0].ID

	// The next scrape no longer lists the second fixture.
	result, err := repo.Upsert(ctx, []fixture.Record{kept})
	require.NoError(t, err)
	require.Equal(t, fixture.UpsertResult{Unchanged: 1}, result)

	got, found, err := repo.GetByID(ctx, droppedID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Mullinavat", got.HomeTeam)
	require.Equal(t, "Mullinavat GAA Grounds", got.Venue)

	total, err := repo.CountAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, total)
}

func TestGetByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, []fixture.Record{sampleRecord()})
	require.NoError(t, err)

	records, _, err := repo.List(ctx, fixture.Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	got, found, err := repo.GetByID(ctx, records[0].ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Tullogher Rosbercon", got.HomeTeam)
	require.False(t, got.IngestedAt.IsZero())

	_, found, err = repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	require.False(t, found)
}

func TestListFilters(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	batch := []fixture.Record{sampleRecord()}

	second := sampleRecord()
	second.DateText = "Saturday 21st Jun 2025"
	second.DateKey = "2025-06-21"
	second.Competition = "Junior Football"
	second.HomeTeam = "Mullinavat"
	second.Venue = "Mullinavat GAA Grounds"
	batch = append(batch, second)

	third := sampleRecord()
	third.DateText = "Sunday 1st Jun 2025"
	third.DateKey = "2025-06-01"
	third.AwayTeam = "Rower Inistioge"
	third.Venue = "Tullogher Park"
	batch = append(batch, third)

	_, err := repo.Upsert(ctx, batch)
	require.NoError(t, err)

	records, total, err := repo.List(ctx, fixture.Filter{DateFrom: "2025-06-15"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, records, 2)
	require.Equal(t, "2025-06-15", records[0].DateKey)
	require.Equal(t, "2025-06-21", records[1].DateKey)

	records, total, err = repo.List(ctx, fixture.Filter{Competition: "Junior Football"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "Mullinavat", records[0].HomeTeam)

	records, total, err = repo.List(ctx, fixture.Filter{Venue: "tullogher"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, records, 2)

	records, total, err = repo.List(ctx, fixture.Filter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, records, 1)
	require.Equal(t, "2025-06-15", records[0].DateKey)
}

func TestDistinctValues(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := sampleRecord()
	second := sampleRecord()
	second.HomeTeam = "Mullinavat"
	second.Competition = "Junior Football"
	second.Venue = ""

	_, err := repo.Upsert(ctx, []fixture.Record{first, second})
	require.NoError(t, err)

	competitions, err := repo.DistinctCompetitions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Junior Football", "Senior Hurling League Division 1"}, competitions)

	venues, err := repo.DistinctVenues(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Tullogher Park"}, venues)
}
