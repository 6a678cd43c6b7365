package calendar

import (
	"strings"
	"testing"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

func TestGenerateTimedEvent(t *testing.T) {
	g := NewGenerator(123)

	out := string(g.Generate([]fixture.Record{{
		ID:          7,
		DateKey:     "2025-06-15",
		Competition: "Senior Hurling League Division 1",
		HomeTeam:    "Tullogher Rosbercon",
		AwayTeam:    "Glenmore",
		TimeText:    "14:00",
		Venue:       "Tullogher Park",
		Referee:     "J. Murphy",
	}}))

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"VERSION:2.0\r\n",
		"X-WR-CALNAME:GAA Fixtures (club 123)\r\n",
		"UID:gaa-fixture-7@club-123.gaa\r\n",
		"DTSTART:20250615T140000Z\r\n",
		"DTEND:20250615T160000Z\r\n",
		"SUMMARY:Tullogher Rosbercon v Glenmore\r\n",
		"LOCATION:Tullogher Park\r\n",
		"DESCRIPTION:Senior Hurling League Division 1\\nReferee: J. Murphy\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateAllDayEventForMissingTime(t *testing.T) {
	g := NewGenerator(123)

	out := string(g.Generate([]fixture.Record{{
		ID:       3,
		DateKey:  "2025-06-21",
		HomeTeam: "Mullinavat",
		AwayTeam: "Glenmore",
		TimeText: "TBC",
	}}))

	if !strings.Contains(out, "DTSTART;VALUE=DATE:20250621\r\n") {
		t.Fatalf("expected all-day start:\n%s", out)
	}
	if !strings.Contains(out, "DTEND;VALUE=DATE:20250622\r\n") {
		t.Fatalf("expected all-day end on next day:\n%s", out)
	}
	if strings.Contains(out, "DTSTART:2025") {
		t.Fatalf("should not emit a timed start:\n%s", out)
	}
}

func TestGenerateEscapesSpecialCharacters(t *testing.T) {
	g := NewGenerator(1)

	out := string(g.Generate([]fixture.Record{{
		ID:       1,
		DateKey:  "2025-06-15",
		HomeTeam: "Tullogher, Rosbercon",
		AwayTeam: "Glenmore; B",
		Venue:    "Park\\Lane",
	}}))

	if !strings.Contains(out, "SUMMARY:Tullogher\\, Rosbercon v Glenmore\\; B\r\n") {
		t.Fatalf("summary not escaped:\n%s", out)
	}
	if !strings.Contains(out, "LOCATION:Park\\\\Lane\r\n") {
		t.Fatalf("location not escaped:\n%s", out)
	}
}

func TestGenerateRoundTrip(t *testing.T) {
	g := NewGenerator(123)

	records := []fixture.Record{
		{
			ID:       7,
			DateKey:  "2025-06-15",
			HomeTeam: "Tullogher, Rosbercon",
			AwayTeam: "Glenmore",
			TimeText: "14:00",
			Venue:    "Tullogher Park; Pitch 2",
		},
		{
			ID:       8,
			DateKey:  "2025-06-21",
			HomeTeam: "Mullinavat",
			AwayTeam: "Rower Inistioge",
			TimeText: "TBC",
			Venue:    "Mullinavat GAA Grounds",
		},
	}

	events := parseEvents(t, string(g.Generate(records)))
	if len(events) != len(records) {
		t.Fatalf("events = %d, want %d", len(events), len(records))
	}

	wantStarts := []string{"20250615T140000Z", "20250621"}
	for i, record := range records {
		event := events[i]
		if want := record.HomeTeam + " v " + record.AwayTeam; event.summary != want {
			t.Fatalf("event %d summary = %q, want %q", i, event.summary, want)
		}
		if event.location != record.Venue {
			t.Fatalf("event %d location = %q, want %q", i, event.location, record.Venue)
		}
		if event.start != wantStarts[i] {
			t.Fatalf("event %d start = %q, want %q", i, event.start, wantStarts[i])
		}
	}
}

type parsedEvent struct {
	summary  string
	location string
	start    string
}

// parseEvents reads VEVENT blocks back out of a generated feed.
func parseEvents(t *testing.T, feed string) []parsedEvent {
	t.Helper()

	var events []parsedEvent
	var current *parsedEvent
	for _, line := range strings.Split(feed, "\r\n") {
		switch {
		case line == "BEGIN:VEVENT":
			if current != nil {
				t.Fatal("nested VEVENT")
			}
			current = &parsedEvent{}
		case line == "END:VEVENT":
			if current == nil {
				t.Fatal("END:VEVENT without BEGIN")
			}
			events = append(events, *current)
			current = nil
		case current == nil:
		case strings.HasPrefix(line, "SUMMARY:"):
			current.summary = unescapeICS(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "LOCATION:"):
			current.location = unescapeICS(strings.TrimPrefix(line, "LOCATION:"))
		case strings.HasPrefix(line, "DTSTART:"):
			current.start = strings.TrimPrefix(line, "DTSTART:")
		case strings.HasPrefix(line, "DTSTART;VALUE=DATE:"):
			current.start = strings.TrimPrefix(line, "DTSTART;VALUE=DATE:")
		}
	}
	if current != nil {
		t.Fatal("unterminated VEVENT")
	}
	return events
}

func unescapeICS(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'n' || s[i] == 'N' {
				b.WriteByte('\n')
				continue
			}
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func TestGenerateSkipsRecordsWithBadDateKey(t *testing.T) {
	g := NewGenerator(1)

	out := string(g.Generate([]fixture.Record{{
		ID:       1,
		DateKey:  "not-a-date",
		HomeTeam: "A",
		AwayTeam: "B",
	}}))

	if strings.Contains(out, "BEGIN:VEVENT") {
		t.Fatalf("expected no events:\n%s", out)
	}
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatalf("calendar envelope missing:\n%s", out)
	}
}
