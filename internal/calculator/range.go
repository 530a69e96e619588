package calculator

import (
	"math"

	"MarketFusion/internal/model"
)

// Shape holds the candle geometry of one bar.
type Shape struct {
	Range       float64
	RangePct    float64
	UpperShadow float64
	LowerShadow float64
	Body        float64
}

// CalculateShape computes the range, shadows and body of a bar. RangePct is
// infinite when close is zero.
func CalculateShape(b model.OHLCV) Shape {
	rng := b.High - b.Low
	return Shape{
		Range:       rng,
		RangePct:    rng / b.Close * 100,
		UpperShadow: b.High - math.Max(b.Open, b.Close),
		LowerShadow: math.Min(b.Open, b.Close) - b.Low,
		Body:        math.Abs(b.Close - b.Open),
	}
}

// CalculateOBV computes on-balance volume. The first bar always adds its
// volume; afterwards a bar adds its volume when close rose strictly and
// subtracts it otherwise, ties included.
func CalculateOBV(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	running := 0.0
	for i, b := range bars {
		if i == 0 || b.Close > bars[i-1].Close {
			running += b.Volume
		} else {
			running -= b.Volume
		}
		out[i] = running
	}
	return out
}
