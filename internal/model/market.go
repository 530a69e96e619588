package model

import (
	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Date   civil.Date
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Indicators holds the per-bar technical features derived from the ordered
// bar sequence. Fields that need history (moving averages, returns) are
// missing until enough bars exist.
type Indicators struct {
	EMA12         null.Float
	EMA26         null.Float
	EMA50         null.Float
	MACD          null.Float
	MACDSignal    null.Float
	MACDHistogram null.Float
	OBV           null.Float

	PriceRange    null.Float
	PriceRangePct null.Float
	UpperShadow   null.Float
	LowerShadow   null.Float
	Body          null.Float

	Returns       null.Float
	DMA50         null.Float
	DMA200        null.Float
	Volatility30D null.Float
}

// Calendar holds seasonality features of a trading day.
type Calendar struct {
	Year           int
	Month          int
	Day            int
	DayOfWeek      int // Monday = 0
	DayOfYear      int
	Quarter        int
	IsMonthStart   bool
	IsMonthEnd     bool
	IsQuarterStart bool
	IsQuarterEnd   bool
}

// Bar is one trading session with its derived features.
type Bar struct {
	OHLCV
	Indicators
	Calendar
}
