// Package merger joins the daily timeline with yearly fundamentals.
package merger

import (
	"fmt"

	"github.com/phuslu/log"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// Stage is the report stage name of the merger.
const Stage = "merge"

// Merge left-joins every trading day with the fundamentals of its calendar
// year, then carries the yearly figures forward across days whose year has
// no statement column. No trading day is dropped. quarterly must be aligned
// with the timeline; nil leaves the quarterly fields missing.
func Merge(tl *model.Timeline, quarterly []model.Quarterly, financials []model.YearlyFinancials, report *fault.Report) ([]model.AlignedRecord, error) {
	if quarterly != nil && len(quarterly) != tl.Len() {
		return nil, fmt.Errorf("merge: %d quarterly rows for %d trading days", len(quarterly), tl.Len())
	}

	byYear := make(map[int]model.YearlyFinancials, len(financials))
	for _, y := range financials {
		byYear[y.FiscalYear] = y
	}

	records := make([]model.AlignedRecord, tl.Len())
	unmatched := 0
	for i := range records {
		bar := tl.At(i)
		records[i].Bar = bar
		if quarterly != nil {
			records[i].Quarterly = quarterly[i]
		}
		y, ok := byYear[bar.Date.Year]
		if !ok {
			unmatched++
			continue
		}
		records[i].Fundamentals = model.Fundamentals{
			Revenue:   y.Revenue,
			NetIncome: y.NetIncome,
			EPS:       y.EPS,
			Equity:    y.Equity,
		}
	}

	for _, col := range model.FundamentalColumns {
		report.Filled(Stage, col.Name, model.ForwardFill(records, col))
	}

	log.Info().
		Int("rows", len(records)).
		Int("fiscal_years", len(byYear)).
		Int("unmatched_days", unmatched).
		Msg("fundamentals merged")
	return records, nil
}
