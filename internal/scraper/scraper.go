package scraper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
)

// Scraper couples the page client with the listing parser.
type Scraper struct {
	client *Client
	parser *Parser
}

func New(client *Client, parser *Parser) *Scraper {
	return &Scraper{client: client, parser: parser}
}

// FetchFixtures downloads and parses the club fixtures listing. The
// second return value counts blocks the parser had to skip.
func (s *Scraper) FetchFixtures(ctx context.Context) ([]fixture.Record, int, error) {
	raw, err := s.client.FetchFixturesPage(ctx)
	if err != nil {
		return nil, 0, err
	}

	result, err := s.parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, fmt.Errorf("parse fixtures listing: %w", err)
	}
	return result.Records, result.Skipped, nil
}
