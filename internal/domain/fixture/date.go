package fixture

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateParseError reports a published date string the normalizer could not
// make sense of. Callers treat it as a soft failure for the affected block.
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable fixture date %q", e.Text)
}

var ordinalSuffixRegex = regexp.MustCompile(`(\d+)(?:st|nd|rd|th)\b`)

// NormalizeDate converts a published date like "Sunday 15th Jun 2025" into
// the sortable ISO form "2025-06-15". The weekday prefix, when present, is
// informational only: the source gets it wrong often enough that checking it
// against the computed date would reject valid fixtures.
func NormalizeDate(text string) (string, error) {
	cleaned := ordinalSuffixRegex.ReplaceAllString(strings.TrimSpace(text), "$1")
	fields := strings.Fields(cleaned)
	if len(fields) == 4 {
		// weekday prefix
		fields = fields[1:]
	}
	if len(fields) != 3 {
		return "", &DateParseError{Text: text}
	}

	candidate := strings.Join(fields, " ")
	for _, layout := range []string{"2 Jan 2006", "2 January 2006"} {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	return "", &DateParseError{Text: text}
}
