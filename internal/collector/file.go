package collector

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"

	"MarketFusion/internal/model"
)

// FileFetcher reads frozen daily bars from a CSV file with a
// Date,Open,High,Low,Close,Volume header (any column order, any case).
// Rows with an unparseable date or a non-numeric or non-finite value are
// skipped.
type FileFetcher struct {
	Path string
}

func (f *FileFetcher) Name() string { return "file" }

// FetchDailyBars returns the bars of the last `years` years counted back from
// the newest row in the file, so the result never depends on the wall clock.
func (f *FileFetcher) FetchDailyBars(_ context.Context, _ string, years int) ([]model.OHLCV, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open bars file: %w", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read bars file: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("bars file: missing %q column", name)
		}
	}

	bars := make([]model.OHLCV, 0, len(records)-1)
	for _, rec := range records[1:] {
		d, err := civil.ParseDate(strings.TrimSpace(rec[cols["date"]]))
		if err != nil {
			continue // skip malformed rows
		}
		var vals [5]float64
		ok := true
		for i, name := range []string{"open", "high", "low", "close", "volume"} {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[cols[name]]), 64)
			if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		bars = append(bars, model.OHLCV{
			Date: d, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3], Volume: vals[4],
		})
	}

	if years > 0 && len(bars) > 0 {
		newest := bars[0].Date
		for _, b := range bars {
			if b.Date.After(newest) {
				newest = b.Date
			}
		}
		cutoff := civil.Date{Year: newest.Year - years, Month: newest.Month, Day: newest.Day}
		kept := bars[:0]
		for _, b := range bars {
			if !b.Date.Before(cutoff) {
				kept = append(kept, b)
			}
		}
		bars = kept
	}
	return bars, nil
}

// FileEarnings reads frozen earnings announcements from a JSON array of
// {"report_date": "2006-01-02", "revenue": n|null, "earnings": n|null}.
type FileEarnings struct {
	Path string
}

func (f *FileEarnings) Name() string { return "file" }

type fileEvent struct {
	ReportDate string   `json:"report_date"`
	Revenue    *float64 `json:"revenue"`
	Earnings   *float64 `json:"earnings"`
}

func (f *FileEarnings) FetchQuarterlyEarnings(_ context.Context, _ string, _ int) ([]model.EarningsEvent, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read earnings file: %w", err)
	}
	var raw []fileEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode earnings file: %w", err)
	}
	events := make([]model.EarningsEvent, 0, len(raw))
	for _, e := range raw {
		d, err := civil.ParseDate(e.ReportDate)
		if err != nil {
			return nil, fmt.Errorf("earnings file: bad report_date %q: %w", e.ReportDate, err)
		}
		events = append(events, model.EarningsEvent{
			ReportDate: d,
			Revenue:    null.FloatFromPtr(e.Revenue),
			Earnings:   null.FloatFromPtr(e.Earnings),
		})
	}
	return events, nil
}
