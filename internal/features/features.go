// Package features derives valuation ratios and sanitizes the fused table.
package features

import (
	"math"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// Stage is the report stage name of the final sanitation pass.
const Stage = "sanitize"

// Derive sets PE = close / eps and ROE = net_income / equity × 100 on every
// record. A ratio is missing when its denominator is missing or zero, or the
// result is not finite.
func Derive(records []model.AlignedRecord) {
	for i := range records {
		r := &records[i]
		r.Ratios.PE = ratio(null.FloatFrom(r.Close), r.Fundamentals.EPS, 1)
		r.Ratios.ROE = ratio(r.Fundamentals.NetIncome, r.Fundamentals.Equity, 100)
	}
}

func ratio(num, den null.Float, scale float64) null.Float {
	if !num.Valid || !den.Valid || den.Float64 == 0 {
		return null.Float{}
	}
	v := num.Float64 / den.Float64 * scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

// Sanitize replaces infinities with missing in every numeric column, then
// forward-fills each column with its own last known value. Leading missing
// entries stay missing. Raw OHLCV is not in scope: the collector drops bars
// with non-finite values before any indicator is computed.
func Sanitize(records []model.AlignedRecord, report *fault.Report) {
	nonFinite := 0
	for _, col := range model.NumericColumns {
		for i := range records {
			v := col.Field(&records[i])
			if v.Valid && (math.IsInf(v.Float64, 0) || math.IsNaN(v.Float64)) {
				*v = null.Float{}
				nonFinite++
			}
		}
	}
	for _, col := range model.NumericColumns {
		report.Filled(Stage, col.Name, model.ForwardFill(records, col))
	}
	report.Add(fault.PartialDataWarning, Stage, "non_finite", nonFinite,
		"non-finite values replaced with missing")

	log.Info().
		Int("rows", len(records)).
		Int("non_finite", nonFinite).
		Msg("table sanitized")
}
