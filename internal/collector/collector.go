package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phuslu/log"

	"MarketFusion/internal/calculator"
	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// Stage is the report stage name of the collector.
const Stage = "fetch"

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, years int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, years*252), nil
}

// MockEarnings returns fixed earnings events.
type MockEarnings struct {
	Events []model.EarningsEvent
	Err    error
}

func (m *MockEarnings) Name() string { return "mock" }

func (m *MockEarnings) FetchQuarterlyEarnings(_ context.Context, _ string, _ int) ([]model.EarningsEvent, error) {
	return m.Events, m.Err
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	today := civil.DateOf(time.Now())
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Date:   today.AddDays(-(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// MarketData is the collector's output: the enriched daily timeline and the
// earnings announcements, if any could be retrieved.
type MarketData struct {
	Timeline *model.Timeline
	Events   []model.EarningsEvent
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Earnings EarningsFetcher // optional
	Symbol   string
	Years    int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, earnings EarningsFetcher, symbol string, years int) *Collector {
	return &Collector{Fetcher: fetcher, Earnings: earnings, Symbol: symbol, Years: years}
}

// Collect fetches daily bars, computes all indicators and makes a
// best-effort attempt at quarterly earnings. An unreachable or empty market
// source is fatal; missing earnings only degrade the report.
func (c *Collector) Collect(ctx context.Context, report *fault.Report) (*MarketData, error) {
	raw, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.Years)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fault.Wrap(fault.DataUnavailable, "fetch daily bars", err)
	}
	if len(raw) == 0 {
		return nil, fault.New(fault.DataUnavailable, "fetch daily bars",
			"%s returned no data for %s", c.Fetcher.Name(), c.Symbol)
	}

	bars := make([]model.Bar, 0, len(raw))
	for _, o := range raw {
		if finiteOHLCV(o) {
			bars = append(bars, model.Bar{OHLCV: o})
		}
	}
	report.Add(fault.PartialDataWarning, Stage, "ohlcv", len(raw)-len(bars),
		"bars with non-finite prices or volume dropped")
	if len(bars) == 0 {
		return nil, fault.New(fault.DataUnavailable, "fetch daily bars",
			"%s returned no usable bars for %s", c.Fetcher.Name(), c.Symbol)
	}
	tl, dropped, err := model.NewTimeline(bars)
	if err != nil {
		return nil, fault.Wrap(fault.DataUnavailable, "build timeline", err)
	}
	report.Add(fault.PartialDataWarning, Stage, "date", dropped, "duplicate trading dates collapsed")

	tl, err = calculator.Enrich(tl)
	if err != nil {
		return nil, fmt.Errorf("compute indicators: %w", err)
	}

	log.Info().
		Str("source", c.Fetcher.Name()).
		Str("symbol", c.Symbol).
		Int("bars", tl.Len()).
		Msg("daily bars collected")

	return &MarketData{Timeline: tl, Events: c.collectEarnings(ctx, report)}, nil
}

// finiteOHLCV reports whether every price and the volume are finite.
func finiteOHLCV(o model.OHLCV) bool {
	for _, v := range []float64{o.Open, o.High, o.Low, o.Close, o.Volume} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

func (c *Collector) collectEarnings(ctx context.Context, report *fault.Report) []model.EarningsEvent {
	if c.Earnings == nil {
		report.Add(fault.PartialDataWarning, Stage, "quarterly", 1,
			"no earnings provider configured; quarterly columns left missing")
		return nil
	}
	events, err := c.Earnings.FetchQuarterlyEarnings(ctx, c.Symbol, c.Years)
	if err != nil {
		report.Add(fault.PartialDataWarning, Stage, "quarterly", 1,
			fmt.Sprintf("quarterly earnings unavailable from %s: %v", c.Earnings.Name(), err))
		return nil
	}
	if len(events) == 0 {
		report.Add(fault.PartialDataWarning, Stage, "quarterly", 1,
			fmt.Sprintf("%s returned no earnings announcements", c.Earnings.Name()))
	}
	return events
}
