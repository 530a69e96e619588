package collector

import (
	"context"

	"MarketFusion/internal/model"
)

// Fetcher retrieves daily bars for a symbol.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error)
	Name() string
}

// EarningsFetcher retrieves quarterly earnings announcements for a symbol.
type EarningsFetcher interface {
	FetchQuarterlyEarnings(ctx context.Context, symbol string, years int) ([]model.EarningsEvent, error)
	Name() string
}
