package calculator

import (
	"fmt"

	"MarketFusion/internal/model"
)

// Lean-layout window lengths.
const (
	ShortDMAPeriod   = 50
	LongDMAPeriod    = 200
	VolatilityPeriod = 30
)

// Enrich computes every per-bar indicator and calendar feature over the full
// timeline and returns a new timeline carrying them.
func Enrich(tl *model.Timeline) (*model.Timeline, error) {
	bars := tl.Bars()
	ohlcv := make([]model.OHLCV, len(bars))
	for i, b := range bars {
		ohlcv[i] = b.OHLCV
	}
	closes := extractCloses(ohlcv)

	ema12, err := CalculateEMA(closes, 12)
	if err != nil {
		return nil, fmt.Errorf("ema 12: %w", err)
	}
	ema26, err := CalculateEMA(closes, 26)
	if err != nil {
		return nil, fmt.Errorf("ema 26: %w", err)
	}
	ema50, err := CalculateEMA(closes, 50)
	if err != nil {
		return nil, fmt.Errorf("ema 50: %w", err)
	}
	macd, err := CalculateMACD(closes)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}
	obv := CalculateOBV(ohlcv)

	returns := CalculateReturns(closes)
	dma50, err := CalculateSMA(closes, ShortDMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("dma %d: %w", ShortDMAPeriod, err)
	}
	dma200, err := CalculateSMA(closes, LongDMAPeriod)
	if err != nil {
		return nil, fmt.Errorf("dma %d: %w", LongDMAPeriod, err)
	}
	vol, err := CalculateVolatility(returns, VolatilityPeriod)
	if err != nil {
		return nil, fmt.Errorf("volatility: %w", err)
	}

	ind := make([]model.Indicators, len(bars))
	cal := make([]model.Calendar, len(bars))
	for i, b := range ohlcv {
		shape := CalculateShape(b)
		ind[i] = model.Indicators{
			EMA12:         finite(ema12[i]),
			EMA26:         finite(ema26[i]),
			EMA50:         finite(ema50[i]),
			MACD:          finite(macd.Line[i]),
			MACDSignal:    finite(macd.Signal[i]),
			MACDHistogram: finite(macd.Histogram[i]),
			OBV:           finite(obv[i]),
			PriceRange:    finite(shape.Range),
			PriceRangePct: finite(shape.RangePct),
			UpperShadow:   finite(shape.UpperShadow),
			LowerShadow:   finite(shape.LowerShadow),
			Body:          finite(shape.Body),
			Returns:       returns[i],
			DMA50:         dma50[i],
			DMA200:        dma200[i],
			Volatility30D: vol[i],
		}
		cal[i] = CalculateCalendar(b.Date)
	}
	return tl.WithIndicators(ind, cal), nil
}
