package calculator

import "errors"

// CalculateEMA computes the exponential moving average series with
// smoothing factor 2/(span+1), seeded with the first value.
func CalculateEMA(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.New("span must be positive")
	}
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out, nil
}

// MACD holds the MACD line, its signal line and the histogram.
type MACD struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// CalculateMACD computes EMA(12) - EMA(26), its EMA(9) signal and the
// histogram.
func CalculateMACD(closes []float64) (*MACD, error) {
	fast, err := CalculateEMA(closes, 12)
	if err != nil {
		return nil, err
	}
	slow, err := CalculateEMA(closes, 26)
	if err != nil {
		return nil, err
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	signal, err := CalculateEMA(line, 9)
	if err != nil {
		return nil, err
	}
	hist := make([]float64, len(closes))
	for i := range closes {
		hist[i] = line[i] - signal[i]
	}
	return &MACD{Line: line, Signal: signal, Histogram: hist}, nil
}
