package merger

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

func timeline(t *testing.T, dates ...civil.Date) *model.Timeline {
	t.Helper()
	bars := make([]model.Bar, len(dates))
	for i, d := range dates {
		bars[i] = model.Bar{OHLCV: model.OHLCV{Date: d, Close: float64(i + 1)}}
	}
	tl, _, err := model.NewTimeline(bars)
	require.NoError(t, err)
	return tl
}

func d(y, m, day int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: day}
}

func TestMerge_PreservesEveryRow(t *testing.T) {
	tl := timeline(t,
		d(2020, 6, 1), d(2021, 3, 1), d(2021, 9, 1), d(2022, 1, 3), d(2023, 5, 2), d(2024, 2, 1))
	financials := []model.YearlyFinancials{
		{FiscalYear: 2021, Revenue: null.FloatFrom(100), EPS: null.FloatFrom(5)},
		{FiscalYear: 2023, Revenue: null.FloatFrom(300)},
		{FiscalYear: 2019, Revenue: null.FloatFrom(1)},
	}
	report := fault.NewReport()
	records, err := Merge(tl, nil, financials, report)
	require.NoError(t, err)
	require.Len(t, records, tl.Len())

	for i, r := range records {
		assert.Equal(t, tl.At(i).Date, r.Date)
	}

	assert.False(t, records[0].Fundamentals.Revenue.Valid, "no earlier year to carry")
	assert.Equal(t, 100.0, records[1].Fundamentals.Revenue.Float64)
	assert.Equal(t, 100.0, records[2].Fundamentals.Revenue.Float64)
	assert.Equal(t, 100.0, records[3].Fundamentals.Revenue.Float64, "2022 carries 2021")
	assert.Equal(t, 300.0, records[4].Fundamentals.Revenue.Float64)
	assert.Equal(t, 300.0, records[5].Fundamentals.Revenue.Float64)

	// 2023 has no EPS; the 2021 value carries across it
	assert.Equal(t, 5.0, records[4].Fundamentals.EPS.Float64)

	fills := map[string]int{}
	for _, f := range report.Fills() {
		fills[f.Column] = f.Count
	}
	assert.Equal(t, 2, fills["revenue"])
	assert.Equal(t, 3, fills["eps"])
}

func TestMerge_CarriesQuarterly(t *testing.T) {
	tl := timeline(t, d(2023, 1, 2), d(2023, 1, 3))
	q := []model.Quarterly{{Revenue: null.FloatFrom(7)}, {Revenue: null.FloatFrom(8)}}
	records, err := Merge(tl, q, nil, fault.NewReport())
	require.NoError(t, err)
	assert.Equal(t, 7.0, records[0].Quarterly.Revenue.Float64)
	assert.Equal(t, 8.0, records[1].Quarterly.Revenue.Float64)
}

func TestMerge_MisalignedQuarterly(t *testing.T) {
	tl := timeline(t, d(2023, 1, 2), d(2023, 1, 3))
	_, err := Merge(tl, []model.Quarterly{{}}, nil, fault.NewReport())
	assert.Error(t, err)
}
