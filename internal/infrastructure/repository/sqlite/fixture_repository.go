package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	qb "github.com/tullogher/gaa-fixtures/internal/platform/querybuilder"
)

const upsertConflictClause = "ON CONFLICT (date_text, competition, home_team, away_team, time_text) DO NOTHING"

type FixtureRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db, now: time.Now}
}

// Upsert writes a scraped batch inside one transaction. Rows that match
// an existing natural key are updated only when a mutable field changed,
// so the result distinguishes inserted, updated and unchanged rows.
func (r *FixtureRepository) Upsert(ctx context.Context, records []fixture.Record) (fixture.UpsertResult, error) {
	var result fixture.UpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ingestedAt := r.now().UTC()
	for _, record := range records {
		inserted, err := insertFixture(ctx, tx, record, ingestedAt)
		if err != nil {
			return fixture.UpsertResult{}, err
		}
		if inserted {
			result.Inserted++
			continue
		}

		updated, err := updateFixture(ctx, tx, record)
		if err != nil {
			return fixture.UpsertResult{}, err
		}
		if updated {
			result.Updated++
		} else {
			result.Unchanged++
		}
	}

	if err := tx.Commit(); err != nil {
		return fixture.UpsertResult{}, fmt.Errorf("commit upsert tx: %w", err)
	}
	return result, nil
}

func insertFixture(ctx context.Context, tx *sqlx.Tx, record fixture.Record, ingestedAt time.Time) (bool, error) {
	query, args, err := qb.InsertModel("fixtures", fixtureInsertModel{
		DateText:    record.DateText,
		DateKey:     record.DateKey,
		Competition: record.Competition,
		HomeTeam:    record.HomeTeam,
		AwayTeam:    record.AwayTeam,
		TimeText:    record.TimeText,
		Venue:       record.Venue,
		Referee:     record.Referee,
		RawMarkup:   record.RawMarkup,
		IngestedAt:  ingestedAt,
	}, upsertConflictClause)
	if err != nil {
		return false, fmt.Errorf("build insert fixture query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert fixture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert fixture rows affected: %w", err)
	}
	return affected == 1, nil
}

func updateFixture(ctx context.Context, tx *sqlx.Tx, record fixture.Record) (bool, error) {
	query, args, err := qb.Update("fixtures").
		Set("venue", record.Venue).
		Set("referee", record.Referee).
		Set("raw_markup", record.RawMarkup).
		Where(
			qb.Eq("date_text", record.DateText),
			qb.Eq("competition", record.Competition),
			qb.Eq("home_team", record.HomeTeam),
			qb.Eq("away_team", record.AwayTeam),
			qb.Eq("time_text", record.TimeText),
			qb.Expr("(venue != ? OR referee != ? OR raw_markup != ?)",
				record.Venue, record.Referee, record.RawMarkup),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update fixture query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update fixture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update fixture rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id int64) (fixture.Record, bool, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fixture.Record{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fixture.Record{}, false, nil
		}
		return fixture.Record{}, false, fmt.Errorf("select fixture by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) List(ctx context.Context, filter fixture.Filter) ([]fixture.Record, int, error) {
	conditions := listConditions(filter)

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("fixtures").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count fixtures query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count fixtures: %w", err)
	}

	builder := qb.Select("*").From("fixtures").
		Where(conditions...).
		OrderBy("date_key ASC", "time_text ASC", "id ASC")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func listConditions(filter fixture.Filter) []qb.Condition {
	conditions := make([]qb.Condition, 0, 3)
	if filter.DateFrom != "" {
		conditions = append(conditions, qb.Gte("date_key", filter.DateFrom))
	}
	if filter.Competition != "" {
		conditions = append(conditions, qb.Eq("competition", filter.Competition))
	}
	if filter.Venue != "" {
		conditions = append(conditions, qb.Like("venue", "%"+filter.Venue+"%"))
	}
	return conditions
}

func (r *FixtureRepository) DistinctCompetitions(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "competition")
}

func (r *FixtureRepository) DistinctVenues(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, "venue")
}

func (r *FixtureRepository) distinctColumn(ctx context.Context, column string) ([]string, error) {
	query, args, err := qb.Select("DISTINCT "+column).From("fixtures").
		Where(qb.Neq(column, "")).
		OrderBy(column + " ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build distinct %s query: %w", column, err)
	}

	out := make([]string, 0, 16)
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select distinct %s: %w", column, err)
	}
	return out, nil
}

func (r *FixtureRepository) CountAll(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("fixtures").ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count fixtures: %w", err)
	}
	return total, nil
}
