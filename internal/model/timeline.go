package model

import (
	"errors"
	"sort"

	"cloud.google.com/go/civil"
)

// ErrEmptyTimeline is returned when a timeline is built from no bars.
var ErrEmptyTimeline = errors.New("timeline has no bars")

// Timeline is an ordered run of daily bars with strictly ascending, unique
// dates. The only way to get one is NewTimeline, so every stage downstream
// can rely on the ordering without re-sorting.
type Timeline struct {
	bars []Bar
}

// NewTimeline sorts the bars by date and collapses duplicate dates, keeping
// the last occurrence in input order. It returns the number of bars dropped.
// The input slice is not modified.
func NewTimeline(bars []Bar) (*Timeline, int, error) {
	if len(bars) == 0 {
		return nil, 0, ErrEmptyTimeline
	}
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := sorted[:0:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Date == b.Date {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return &Timeline{bars: out}, len(bars) - len(out), nil
}

// Len returns the number of trading days.
func (t *Timeline) Len() int { return len(t.bars) }

// At returns the i-th bar.
func (t *Timeline) At(i int) Bar { return t.bars[i] }

// Dates returns the trading dates in ascending order.
func (t *Timeline) Dates() []civil.Date {
	dates := make([]civil.Date, len(t.bars))
	for i, b := range t.bars {
		dates[i] = b.Date
	}
	return dates
}

// Bars returns a copy of the bars in ascending date order.
func (t *Timeline) Bars() []Bar {
	out := make([]Bar, len(t.bars))
	copy(out, t.bars)
	return out
}

// Closes returns the close prices in date order.
func (t *Timeline) Closes() []float64 {
	closes := make([]float64, len(t.bars))
	for i, b := range t.bars {
		closes[i] = b.Close
	}
	return closes
}

// WithIndicators returns a new timeline whose bars carry the given
// indicators and calendar features. Both slices must be aligned with the
// timeline.
func (t *Timeline) WithIndicators(ind []Indicators, cal []Calendar) *Timeline {
	bars := t.Bars()
	for i := range bars {
		if i < len(ind) {
			bars[i].Indicators = ind[i]
		}
		if i < len(cal) {
			bars[i].Calendar = cal[i]
		}
	}
	return &Timeline{bars: bars}
}
