package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

const (
	prodID        = "-//GAA Fixtures//gaa-fixtures//EN"
	eventDuration = 2 * time.Hour
)

// Generator renders fixtures as an RFC 5545 calendar feed. Fixtures
// without a parseable throw-in time become all-day events.
type Generator struct {
	clubID int
	now    func() time.Time
}

func NewGenerator(clubID int) *Generator {
	return &Generator{clubID: clubID, now: time.Now}
}

func (g *Generator) Generate(records []fixture.Record) []byte {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeLine(buf, "BEGIN:VCALENDAR")
	writeLine(buf, "VERSION:2.0")
	writeLine(buf, "PRODID:"+prodID)
	writeLine(buf, "CALSCALE:GREGORIAN")
	writeLine(buf, "METHOD:PUBLISH")
	writeLine(buf, fmt.Sprintf("X-WR-CALNAME:GAA Fixtures (club %d)", g.clubID))

	stamp := formatICSTime(g.now().UTC())
	for _, record := range records {
		g.writeEvent(buf, record, stamp)
	}

	writeLine(buf, "END:VCALENDAR")

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out
}

func (g *Generator) writeEvent(buf *bytebufferpool.ByteBuffer, record fixture.Record, stamp string) {
	date, err := time.Parse("2006-01-02", record.DateKey)
	if err != nil {
		return
	}

	writeLine(buf, "BEGIN:VEVENT")
	writeLine(buf, fmt.Sprintf("UID:gaa-fixture-%d@club-%d.gaa", record.ID, g.clubID))
	writeLine(buf, "DTSTAMP:"+stamp)

	if start, ok := throwInTime(date, record.TimeText); ok {
		writeLine(buf, "DTSTART:"+formatICSTime(start))
		writeLine(buf, "DTEND:"+formatICSTime(start.Add(eventDuration)))
	} else {
		writeLine(buf, "DTSTART;VALUE=DATE:"+date.Format("20060102"))
		writeLine(buf, "DTEND;VALUE=DATE:"+date.AddDate(0, 0, 1).Format("20060102"))
	}

	summary := record.HomeTeam + " v " + record.AwayTeam
	writeLine(buf, "SUMMARY:"+escapeICS(summary))

	description := record.Competition
	if record.Referee != "" {
		if description != "" {
			description += "\n"
		}
		description += "Referee: " + record.Referee
	}
	if description != "" {
		writeLine(buf, "DESCRIPTION:"+escapeICS(description))
	}
	if record.Venue != "" {
		writeLine(buf, "LOCATION:"+escapeICS(record.Venue))
	}

	writeLine(buf, "STATUS:CONFIRMED")
	writeLine(buf, "TRANSP:OPAQUE")
	writeLine(buf, "END:VEVENT")
}

// throwInTime combines the fixture date with a HH:MM time, treating the
// listing's local clock times as UTC.
func throwInTime(date time.Time, timeText string) (time.Time, bool) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(timeText))
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), true
}

func writeLine(buf *bytebufferpool.ByteBuffer, line string) {
	_, _ = buf.WriteString(line)
	_, _ = buf.WriteString("\r\n")
}

func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes text values per RFC 5545 section 3.3.11.
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
