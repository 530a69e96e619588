package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"MarketFusion/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API through
// finance-go.
type YahooFetcher struct {
	Retry     RetryConfig
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Now       func() time.Time
}

// NewYahooFetcher creates a Yahoo fetcher. finance-go keeps a package-level
// HTTP client, so the timeout and proxy apply process-wide.
func NewYahooFetcher(timeout time.Duration, proxyURL string, retries int) *YahooFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	finance.SetHTTPClient(&http.Client{Timeout: timeout, Transport: transport})

	retry := DefaultRetryConfig()
	retry.MaxRetries = retries
	return &YahooFetcher{
		Retry: retry,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Now: time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// FetchDailyBars returns split- and dividend-adjusted daily bars covering the
// last `years` years.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, years int) ([]model.OHLCV, error) {
	end := f.Now()
	start := end.AddDate(-years, 0, 0)

	var bars []model.OHLCV
	err := withRetry(ctx, f.Retry, func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   f.yahooSymbol(symbol),
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		})
		bars = bars[:0]
		for iter.Next() {
			b := iter.Bar()
			if b.Open.IsZero() && b.High.IsZero() && b.Low.IsZero() && b.Close.IsZero() {
				continue // null bars (holidays etc.)
			}
			bars = append(bars, adjustBar(
				sessionDate(int64(b.Timestamp), iter.Meta().Gmtoffset),
				b.Open, b.High, b.Low, b.Close, b.AdjClose, float64(b.Volume),
			))
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("yahoo chart %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// sessionDate returns the exchange-local trading date of a bar timestamp.
// gmtOffset is the exchange's offset from UTC in seconds, as reported in the
// chart metadata; sessions east of UTC open before midnight UTC.
func sessionDate(ts int64, gmtOffset int) civil.Date {
	return civil.DateOf(time.Unix(ts, 0).In(time.FixedZone("", gmtOffset)))
}

// adjustBar scales open, high, low and close by adjClose/close, the way
// auto-adjusted history is reported. Bars without a usable adjusted close
// are returned as-is.
func adjustBar(date civil.Date, open, high, low, cls, adjClose decimal.Decimal, volume float64) model.OHLCV {
	ratio := decimal.NewFromInt(1)
	if !cls.IsZero() && !adjClose.IsZero() {
		ratio = adjClose.Div(cls)
	}
	return model.OHLCV{
		Date:   date,
		Open:   open.Mul(ratio).InexactFloat64(),
		High:   high.Mul(ratio).InexactFloat64(),
		Low:    low.Mul(ratio).InexactFloat64(),
		Close:  cls.Mul(ratio).InexactFloat64(),
		Volume: volume,
	}
}
