package exporter

import (
	"fmt"
	"strings"

	"github.com/guregu/null/v6"

	"MarketFusion/internal/model"
)

// Layout selects the output columns.
type Layout string

const (
	LayoutFull Layout = "full"
	LayoutLean Layout = "lean"
)

// ParseLayout accepts a layout name in any case.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutFull, LayoutLean:
		return l, nil
	case "":
		return LayoutFull, nil
	default:
		return "", fmt.Errorf("unknown layout %q", s)
	}
}

// column renders one output field. value returns a string, float64, int,
// or nil for a missing entry.
type column struct {
	header string
	value  func(r *model.AlignedRecord) any
}

// Headers returns the column names of a layout.
func (l Layout) Headers() []string {
	cols := l.columns()
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header
	}
	return out
}

func (l Layout) columns() []column {
	if l == LayoutLean {
		return leanColumns
	}
	return fullColumns
}

func nf(v null.Float) any {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

func flag(b bool) any {
	if b {
		return 1
	}
	return 0
}

var fullColumns = []column{
	{"date", func(r *model.AlignedRecord) any { return r.Date.String() }},
	{"open", func(r *model.AlignedRecord) any { return r.Open }},
	{"high", func(r *model.AlignedRecord) any { return r.High }},
	{"low", func(r *model.AlignedRecord) any { return r.Low }},
	{"close", func(r *model.AlignedRecord) any { return r.Close }},
	{"volume", func(r *model.AlignedRecord) any { return r.Volume }},
	{"ema_12", func(r *model.AlignedRecord) any { return nf(r.EMA12) }},
	{"ema_26", func(r *model.AlignedRecord) any { return nf(r.EMA26) }},
	{"ema_50", func(r *model.AlignedRecord) any { return nf(r.EMA50) }},
	{"macd", func(r *model.AlignedRecord) any { return nf(r.MACD) }},
	{"macd_signal", func(r *model.AlignedRecord) any { return nf(r.MACDSignal) }},
	{"macd_histogram", func(r *model.AlignedRecord) any { return nf(r.MACDHistogram) }},
	{"obv", func(r *model.AlignedRecord) any { return nf(r.OBV) }},
	{"price_range", func(r *model.AlignedRecord) any { return nf(r.PriceRange) }},
	{"price_range_pct", func(r *model.AlignedRecord) any { return nf(r.PriceRangePct) }},
	{"upper_shadow", func(r *model.AlignedRecord) any { return nf(r.UpperShadow) }},
	{"lower_shadow", func(r *model.AlignedRecord) any { return nf(r.LowerShadow) }},
	{"body", func(r *model.AlignedRecord) any { return nf(r.Body) }},
	{"year", func(r *model.AlignedRecord) any { return r.Year }},
	{"month", func(r *model.AlignedRecord) any { return r.Month }},
	{"day", func(r *model.AlignedRecord) any { return r.Day }},
	{"day_of_week", func(r *model.AlignedRecord) any { return r.DayOfWeek }},
	{"day_of_year", func(r *model.AlignedRecord) any { return r.DayOfYear }},
	{"quarter", func(r *model.AlignedRecord) any { return r.Quarter }},
	{"is_month_start", func(r *model.AlignedRecord) any { return flag(r.IsMonthStart) }},
	{"is_month_end", func(r *model.AlignedRecord) any { return flag(r.IsMonthEnd) }},
	{"is_quarter_start", func(r *model.AlignedRecord) any { return flag(r.IsQuarterStart) }},
	{"is_quarter_end", func(r *model.AlignedRecord) any { return flag(r.IsQuarterEnd) }},
	{"quarterly_revenue", func(r *model.AlignedRecord) any { return nf(r.Quarterly.Revenue) }},
	{"quarterly_earnings", func(r *model.AlignedRecord) any { return nf(r.Quarterly.Earnings) }},
	{"days_since_result", func(r *model.AlignedRecord) any { return nf(r.Quarterly.DaysSinceResult) }},
	{"days_to_next_result", func(r *model.AlignedRecord) any { return nf(r.Quarterly.DaysToNextResult) }},
	{"revenue", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.Revenue) }},
	{"net_income", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.NetIncome) }},
	{"eps", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.EPS) }},
	{"equity", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.Equity) }},
	{"pe", func(r *model.AlignedRecord) any { return nf(r.Ratios.PE) }},
	{"roe", func(r *model.AlignedRecord) any { return nf(r.Ratios.ROE) }},
}

var leanColumns = []column{
	{"Date", func(r *model.AlignedRecord) any { return r.Date.String() }},
	{"Open", func(r *model.AlignedRecord) any { return r.Open }},
	{"High", func(r *model.AlignedRecord) any { return r.High }},
	{"Low", func(r *model.AlignedRecord) any { return r.Low }},
	{"Close", func(r *model.AlignedRecord) any { return r.Close }},
	{"Volume", func(r *model.AlignedRecord) any { return r.Volume }},
	{"Returns", func(r *model.AlignedRecord) any { return nf(r.Returns) }},
	{"DMA_50", func(r *model.AlignedRecord) any { return nf(r.DMA50) }},
	{"DMA_200", func(r *model.AlignedRecord) any { return nf(r.DMA200) }},
	{"Volatility_30D", func(r *model.AlignedRecord) any { return nf(r.Volatility30D) }},
	{"Year", func(r *model.AlignedRecord) any { return r.Date.Year }},
	{"Revenue", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.Revenue) }},
	{"Net_Income", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.NetIncome) }},
	{"EPS", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.EPS) }},
	{"Equity", func(r *model.AlignedRecord) any { return nf(r.Fundamentals.Equity) }},
	{"PE", func(r *model.AlignedRecord) any { return nf(r.Ratios.PE) }},
	{"ROE", func(r *model.AlignedRecord) any { return nf(r.Ratios.ROE) }},
}
