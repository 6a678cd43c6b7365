package fixture

import "time"

// Record is one scraped fixture as cached locally. Rows are only ever
// inserted or have their mutable fields updated; the source dropping a
// fixture from its listing never removes it here.
type Record struct {
	ID          int64
	DateText    string
	DateKey     string
	Competition string
	HomeTeam    string
	AwayTeam    string
	TimeText    string
	Venue       string
	Referee     string
	RawMarkup   string
	IngestedAt  time.Time
}

// Key is the natural identity of a fixture across repeated scrapes.
// Venue and referee are deliberately excluded: the source corrects them
// between scrapes and they must update in place, not fork a new row.
type Key struct {
	DateText    string
	Competition string
	HomeTeam    string
	AwayTeam    string
	TimeText    string
}

func (r Record) Key() Key {
	return Key{
		DateText:    r.DateText,
		Competition: r.Competition,
		HomeTeam:    r.HomeTeam,
		AwayTeam:    r.AwayTeam,
		TimeText:    r.TimeText,
	}
}

// Filter narrows List results. Zero values disable each clause.
type Filter struct {
	// DateFrom is an inclusive ISO date lower bound on DateKey.
	DateFrom string
	// Competition is matched exactly.
	Competition string
	// Venue is a case-insensitive substring match.
	Venue  string
	Limit  int
	Offset int
}

// UpsertResult reports what one ingestion batch did to the store.
type UpsertResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}
