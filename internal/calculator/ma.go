package calculator

import (
	"errors"
	"math"

	movingaverage "github.com/RobinUS2/golang-moving-average"
	"github.com/guregu/null/v6"

	"MarketFusion/internal/model"
)

// CalculateSMA computes the simple moving average series of prices over the
// given period. Entries before the window is full are missing.
func CalculateSMA(prices []float64, period int) ([]null.Float, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]null.Float, len(prices))
	ma := movingaverage.New(period)
	for i, p := range prices {
		ma.Add(p)
		if ma.Count() >= period {
			out[i] = finite(ma.Avg())
		}
	}
	return out, nil
}

// CalculateReturns computes the percent change between consecutive prices.
// The first entry is missing.
func CalculateReturns(prices []float64) []null.Float {
	out := make([]null.Float, len(prices))
	for i := 1; i < len(prices); i++ {
		out[i] = finite(prices[i]/prices[i-1] - 1)
	}
	return out
}

// CalculateVolatility computes the rolling sample standard deviation of
// returns over the given period. A window containing a missing return yields
// a missing entry.
func CalculateVolatility(returns []null.Float, period int) ([]null.Float, error) {
	if period < 2 {
		return nil, errors.New("period must be at least 2")
	}
	out := make([]null.Float, len(returns))
	for i := period - 1; i < len(returns); i++ {
		window := returns[i-period+1 : i+1]
		sum := 0.0
		complete := true
		for _, r := range window {
			if !r.Valid {
				complete = false
				break
			}
			sum += r.Float64
		}
		if !complete {
			continue
		}
		mean := sum / float64(period)
		ss := 0.0
		for _, r := range window {
			d := r.Float64 - mean
			ss += d * d
		}
		out[i] = finite(math.Sqrt(ss / float64(period-1)))
	}
	return out, nil
}

func extractCloses(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// finite wraps v, treating NaN as missing. Infinities are kept so the final
// sanitation pass can account for them.
func finite(v float64) null.Float {
	if math.IsNaN(v) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
