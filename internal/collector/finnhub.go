package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-resty/resty/v2"
	"github.com/guregu/null/v6"

	"MarketFusion/internal/httpclient"
	"MarketFusion/internal/model"
)

// DefaultFinnhubBaseURL is the Finnhub REST root.
const DefaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// upcomingHorizon extends the calendar query past today so the next
// scheduled announcement is known.
const upcomingHorizon = 120 * 24 * time.Hour

// ErrNoAPIKey is returned when a keyed provider has no key configured.
var ErrNoAPIKey = errors.New("api key not configured")

// FinnhubEarnings implements EarningsFetcher using the Finnhub earnings
// calendar. Finnhub reports EPS rather than net earnings, so the event's
// earnings figure is the reported EPS.
type FinnhubEarnings struct {
	APIKey string
	Client *resty.Client
	Now    func() time.Time
}

// NewFinnhubEarnings creates a Finnhub earnings client.
func NewFinnhubEarnings(baseURL, apiKey string, opts httpclient.Options) *FinnhubEarnings {
	if baseURL == "" {
		baseURL = DefaultFinnhubBaseURL
	}
	opts.BaseURL = baseURL
	return &FinnhubEarnings{
		APIKey: apiKey,
		Client: httpclient.New(opts),
		Now:    time.Now,
	}
}

func (f *FinnhubEarnings) Name() string { return "finnhub" }

type finnhubCalendar struct {
	EarningsCalendar []struct {
		Date          string   `json:"date"`
		EPSActual     *float64 `json:"epsActual"`
		RevenueActual *float64 `json:"revenueActual"`
		Symbol        string   `json:"symbol"`
	} `json:"earningsCalendar"`
}

func (f *FinnhubEarnings) FetchQuarterlyEarnings(ctx context.Context, symbol string, years int) ([]model.EarningsEvent, error) {
	if f.APIKey == "" {
		return nil, fmt.Errorf("finnhub: %w", ErrNoAPIKey)
	}
	now := f.Now()
	var cal finnhubCalendar
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   now.AddDate(-years, 0, 0).Format("2006-01-02"),
			"to":     now.Add(upcomingHorizon).Format("2006-01-02"),
			"token":  f.APIKey,
		}).
		SetResult(&cal).
		Get("/calendar/earnings")
	if err != nil {
		return nil, fmt.Errorf("finnhub earnings: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("finnhub earnings: status %d", resp.StatusCode())
	}

	events := make([]model.EarningsEvent, 0, len(cal.EarningsCalendar))
	for _, e := range cal.EarningsCalendar {
		d, err := civil.ParseDate(e.Date)
		if err != nil {
			continue
		}
		events = append(events, model.EarningsEvent{
			ReportDate: d,
			Revenue:    null.FloatFromPtr(e.RevenueActual),
			Earnings:   null.FloatFromPtr(e.EPSActual),
		})
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("finnhub earnings: no announcements for %s", symbol)
	}
	return events, nil
}
