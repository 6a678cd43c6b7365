package scraper

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
)

var (
	venueRegex   = regexp.MustCompile(`Venue:\s*(.*?)(?:\s*Referee:|$)`)
	refereeRegex = regexp.MustCompile(`Referee:\s*(.+)$`)
)

// ParseResult carries the extracted fixtures plus the number of blocks
// that were skipped for missing required fields or an unparseable date
// header.
type ParseResult struct {
	Records []fixture.Record
	Skipped int
}

type Parser struct {
	logger *logging.Logger
}

func NewParser(logger *logging.Logger) *Parser {
	if logger == nil {
		logger = logging.Default()
	}
	return &Parser{logger: logger}
}

// Parse walks the fixtures listing markup. Each h3.fix_res_date header
// owns the div.competition blocks that follow it up to the next header.
func (p *Parser) Parse(r io.Reader) (ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ParseResult{}, err
	}

	headers := doc.Find("h3.fix_res_date")
	if headers.Length() == 0 {
		return ParseResult{}, fixture.ErrUnrecognizedListing
	}

	result := ParseResult{Records: make([]fixture.Record, 0, 16)}
	headers.Each(func(_ int, header *goquery.Selection) {
		dateText := collapseWhitespace(header.Text())
		blocks := header.NextUntil("h3").Filter("div.competition")

		dateKey, dateErr := fixture.NormalizeDate(dateText)
		if dateErr != nil {
			result.Skipped += blocks.Length()
			p.logger.Warn("skipping fixture blocks under unparseable date header",
				"date_text", dateText,
				"blocks", blocks.Length(),
			)
			return
		}

		blocks.Each(func(_ int, block *goquery.Selection) {
			record, ok := p.parseBlock(block, dateText, dateKey)
			if !ok {
				result.Skipped++
				return
			}
			result.Records = append(result.Records, record)
		})
	})

	return result, nil
}

func (p *Parser) parseBlock(block *goquery.Selection, dateText, dateKey string) (fixture.Record, bool) {
	competition := collapseWhitespace(block.Find("div.competition-name").First().Text())
	homeTeam := collapseWhitespace(block.Find("div.home_team a").First().Text())
	awayTeam := collapseWhitespace(block.Find("div.away_team a").First().Text())
	timeText := collapseWhitespace(block.Find("div.time").First().Text())
	if competition == "" || homeTeam == "" || awayTeam == "" || timeText == "" {
		p.logger.Warn("skipping fixture block with missing required field",
			"date_text", dateText,
			"competition", competition,
			"home_team", homeTeam,
			"away_team", awayTeam,
			"time_text", timeText,
		)
		return fixture.Record{}, false
	}

	venue, referee := parseMoreInfo(collapseWhitespace(block.Find("div.more_info").First().Text()))

	rawMarkup := ""
	if html, err := goquery.OuterHtml(block); err == nil {
		rawMarkup = strings.TrimSpace(html)
	}

	return fixture.Record{
		DateText:    dateText,
		DateKey:     dateKey,
		Competition: competition,
		HomeTeam:    homeTeam,
		AwayTeam:    awayTeam,
		TimeText:    timeText,
		Venue:       venue,
		Referee:     referee,
		RawMarkup:   rawMarkup,
	}, true
}

func parseMoreInfo(text string) (venue, referee string) {
	if text == "" {
		return "", ""
	}
	if m := venueRegex.FindStringSubmatch(text); m != nil {
		venue = strings.TrimSpace(m[1])
	}
	if m := refereeRegex.FindStringSubmatch(text); m != nil {
		referee = strings.TrimSpace(m[1])
	}
	return venue, referee
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
