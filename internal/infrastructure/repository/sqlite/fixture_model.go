package sqlite

import (
	"time"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID          int64     `db:"id"`
	DateText    string    `db:"date_text"`
	DateKey     string    `db:"date_key"`
	Competition string    `db:"competition"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	TimeText    string    `db:"time_text"`
	Venue       string    `db:"venue"`
	Referee     string    `db:"referee"`
	RawMarkup   string    `db:"raw_markup"`
	IngestedAt  time.Time `db:"ingested_at"`
}

// fixtureInsertModel omits the autoincrement id so InsertModel can map
// the remaining columns straight from db tags.
type fixtureInsertModel struct {
	DateText    string    `db:"date_text"`
	DateKey     string    `db:"date_key"`
	Competition string    `db:"competition"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	TimeText    string    `db:"time_text"`
	Venue       string    `db:"venue"`
	Referee     string    `db:"referee"`
	RawMarkup   string    `db:"raw_markup"`
	IngestedAt  time.Time `db:"ingested_at"`
}

func (m fixtureTableModel) toDomain() fixture.Record {
	return fixture.Record{
		ID:          m.ID,
		DateText:    m.DateText,
		DateKey:     m.DateKey,
		Competition: m.Competition,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		TimeText:    m.TimeText,
		Venue:       m.Venue,
		Referee:     m.Referee,
		RawMarkup:   m.RawMarkup,
		IngestedAt:  m.IngestedAt,
	}
}
