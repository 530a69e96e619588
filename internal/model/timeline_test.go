package model

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) civil.Date { return civil.Date{Year: 2024, Month: 1, Day: d} }

func TestNewTimeline_SortsAndDeduplicates(t *testing.T) {
	bars := []Bar{
		{OHLCV: OHLCV{Date: day(5), Close: 5}},
		{OHLCV: OHLCV{Date: day(2), Close: 2}},
		{OHLCV: OHLCV{Date: day(5), Close: 55}},
		{OHLCV: OHLCV{Date: day(3), Close: 3}},
	}
	tl, dropped, err := NewTimeline(bars)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Equal(t, 3, tl.Len())

	dates := tl.Dates()
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i-1].Before(dates[i]), "dates must be strictly ascending")
	}
	assert.Equal(t, []float64{2, 3, 55}, tl.Closes(), "last duplicate wins")
	assert.Equal(t, 5.0, bars[0].Close, "input must not be modified")
}

func TestNewTimeline_Empty(t *testing.T) {
	_, _, err := NewTimeline(nil)
	assert.ErrorIs(t, err, ErrEmptyTimeline)
}

func TestForwardFill_KeepsLeadingMissing(t *testing.T) {
	recs := make([]AlignedRecord, 5)
	recs[1].Fundamentals.EPS = null.FloatFrom(4)
	recs[3].Fundamentals.EPS = null.FloatFrom(6)

	filled := ForwardFill(recs, FundamentalColumns[2])
	assert.Equal(t, 2, filled)
	assert.False(t, recs[0].Fundamentals.EPS.Valid)
	assert.Equal(t, 4.0, recs[2].Fundamentals.EPS.Float64)
	assert.Equal(t, 6.0, recs[4].Fundamentals.EPS.Float64)
}

func TestNumericColumnsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range NumericColumns {
		assert.False(t, seen[c.Name], c.Name)
		seen[c.Name] = true
	}
}
