package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"MarketFusion/internal/httpclient"
	"MarketFusion/internal/model"
)

// EODHD defaults.
const (
	DefaultEODHDBaseURL   = "https://eodhd.com/api"
	DefaultEODHDRateLimit = 10
)

// EODHDFetcher implements Fetcher using the EODHD end-of-day REST API.
type EODHDFetcher struct {
	APIKey  string
	Client  *resty.Client
	Limiter *rate.Limiter
	Now     func() time.Time
}

// NewEODHDFetcher creates a rate-limited EODHD fetcher.
func NewEODHDFetcher(baseURL, apiKey string, requestsPerSecond int, opts httpclient.Options) *EODHDFetcher {
	if baseURL == "" {
		baseURL = DefaultEODHDBaseURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultEODHDRateLimit
	}
	opts.BaseURL = baseURL
	return &EODHDFetcher{
		APIKey:  apiKey,
		Client:  httpclient.New(opts),
		Limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		Now:     time.Now,
	}
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

// eodBar is the JSON shape of one EODHD end-of-day row.
type eodBar struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        float64 `json:"volume"`
}

func (f *EODHDFetcher) FetchDailyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("eodhd rate limiter: %w", err)
	}
	end := f.Now()
	start := end.AddDate(-years, 0, 0)

	var rows []eodBar
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_token": f.APIKey,
			"fmt":       "json",
			"period":    "d",
			"order":     "a",
			"from":      start.Format("2006-01-02"),
			"to":        end.Format("2006-01-02"),
		}).
		SetResult(&rows).
		Get("/eod/" + symbol)
	if err != nil {
		return nil, fmt.Errorf("eodhd fetch bars: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("eodhd fetch bars: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, r := range rows {
		d, err := civil.ParseDate(r.Date)
		if err != nil {
			continue
		}
		bars = append(bars, adjustBar(d,
			decimal.NewFromFloat(r.Open), decimal.NewFromFloat(r.High),
			decimal.NewFromFloat(r.Low), decimal.NewFromFloat(r.Close),
			decimal.NewFromFloat(r.AdjustedClose), r.Volume,
		))
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
