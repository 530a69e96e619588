package model

import "github.com/guregu/null/v6"

// Fundamentals holds the yearly figures joined onto a trading day.
type Fundamentals struct {
	Revenue   null.Float
	NetIncome null.Float
	EPS       null.Float
	Equity    null.Float
}

// Ratios holds valuation ratios derived from price and fundamentals.
type Ratios struct {
	PE  null.Float
	ROE null.Float
}

// AlignedRecord is the fused per-day row.
type AlignedRecord struct {
	Bar
	Quarterly    Quarterly
	Fundamentals Fundamentals
	Ratios       Ratios
}

// Column names a nullable numeric field of an AlignedRecord.
type Column struct {
	Name  string
	Field func(r *AlignedRecord) *null.Float
}

// NumericColumns lists every nullable numeric field of an AlignedRecord in a
// fixed order. Table-wide passes (sanitation, fill accounting) iterate it.
var NumericColumns = []Column{
	{"ema_12", func(r *AlignedRecord) *null.Float { return &r.EMA12 }},
	{"ema_26", func(r *AlignedRecord) *null.Float { return &r.EMA26 }},
	{"ema_50", func(r *AlignedRecord) *null.Float { return &r.EMA50 }},
	{"macd", func(r *AlignedRecord) *null.Float { return &r.MACD }},
	{"macd_signal", func(r *AlignedRecord) *null.Float { return &r.MACDSignal }},
	{"macd_histogram", func(r *AlignedRecord) *null.Float { return &r.MACDHistogram }},
	{"obv", func(r *AlignedRecord) *null.Float { return &r.OBV }},
	{"price_range", func(r *AlignedRecord) *null.Float { return &r.PriceRange }},
	{"price_range_pct", func(r *AlignedRecord) *null.Float { return &r.PriceRangePct }},
	{"upper_shadow", func(r *AlignedRecord) *null.Float { return &r.UpperShadow }},
	{"lower_shadow", func(r *AlignedRecord) *null.Float { return &r.LowerShadow }},
	{"body", func(r *AlignedRecord) *null.Float { return &r.Body }},
	{"returns", func(r *AlignedRecord) *null.Float { return &r.Returns }},
	{"dma_50", func(r *AlignedRecord) *null.Float { return &r.DMA50 }},
	{"dma_200", func(r *AlignedRecord) *null.Float { return &r.DMA200 }},
	{"volatility_30d", func(r *AlignedRecord) *null.Float { return &r.Volatility30D }},
	{"quarterly_revenue", func(r *AlignedRecord) *null.Float { return &r.Quarterly.Revenue }},
	{"quarterly_earnings", func(r *AlignedRecord) *null.Float { return &r.Quarterly.Earnings }},
	{"days_since_result", func(r *AlignedRecord) *null.Float { return &r.Quarterly.DaysSinceResult }},
	{"days_to_next_result", func(r *AlignedRecord) *null.Float { return &r.Quarterly.DaysToNextResult }},
	{"revenue", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.Revenue }},
	{"net_income", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.NetIncome }},
	{"eps", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.EPS }},
	{"equity", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.Equity }},
	{"pe", func(r *AlignedRecord) *null.Float { return &r.Ratios.PE }},
	{"roe", func(r *AlignedRecord) *null.Float { return &r.Ratios.ROE }},
}

// FundamentalColumns are the merged yearly fields.
var FundamentalColumns = []Column{
	{"revenue", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.Revenue }},
	{"net_income", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.NetIncome }},
	{"eps", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.EPS }},
	{"equity", func(r *AlignedRecord) *null.Float { return &r.Fundamentals.Equity }},
}

// ForwardFill carries the last valid value of col forward over missing
// entries. Leading missing entries stay missing. It returns the number of
// entries filled.
func ForwardFill(records []AlignedRecord, col Column) int {
	filled := 0
	var last null.Float
	for i := range records {
		v := col.Field(&records[i])
		if v.Valid {
			last = *v
			continue
		}
		if last.Valid {
			*v = last
			filled++
		}
	}
	return filled
}
