package scraper

import (
	"context"
	"errors"
	"strings"

	"github.com/phuslu/log"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// Stage is the report stage name of the scraper.
const Stage = "scrape"

// Scraper retrieves a statement page and parses its yearly series.
type Scraper struct {
	Source Source
	Parser *Parser
}

// New creates a Scraper.
func New(source Source, parser *Parser) *Scraper {
	return &Scraper{Source: source, Parser: parser}
}

// Scrape returns the most recent `years` fiscal years found at location.
// A document that cannot be retrieved is a ScrapeSchemaError.
func (s *Scraper) Scrape(ctx context.Context, location string, years int, report *fault.Report) ([]model.YearlyFinancials, error) {
	doc, err := s.Source.Fetch(ctx, location)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fault.Wrap(fault.ScrapeSchemaError, "fetch statement", err)
	}

	financials, err := s.Parser.Parse(strings.NewReader(doc), years, report)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("source", s.Source.Name()).
		Str("location", location).
		Int("years", len(financials)).
		Msg("fundamentals scraped")
	return financials, nil
}
