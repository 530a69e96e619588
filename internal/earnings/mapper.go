// Package earnings projects sparse quarterly announcements onto the daily
// timeline.
package earnings

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"
	"github.com/phuslu/log"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// Stage is the report stage name of the mapper.
const Stage = "earnings"

// Window bounds around a report date, in calendar days, inclusive.
const (
	DaysBefore = 5
	DaysAfter  = 30
)

// Map returns one Quarterly per timeline row. Every row within an event's
// window takes that event's figures; where windows overlap the later
// announcement wins. Rows outside every window carry the previous row's
// figures forward. Day counts are measured to the nearest announcements on
// either side.
func Map(tl *model.Timeline, events []model.EarningsEvent, report *fault.Report) []model.Quarterly {
	out := make([]model.Quarterly, tl.Len())
	if len(events) == 0 {
		return out
	}

	sorted := make([]model.EarningsEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ReportDate.Before(sorted[j].ReportDate)
	})

	dates := tl.Dates()
	for _, e := range sorted {
		from := e.ReportDate.AddDays(-DaysBefore)
		to := e.ReportDate.AddDays(DaysAfter)
		i := sort.Search(len(dates), func(i int) bool { return !dates[i].Before(from) })
		for ; i < len(dates) && !dates[i].After(to); i++ {
			out[i].Revenue = e.Revenue
			out[i].Earnings = e.Earnings
		}
	}

	report.Filled(Stage, "quarterly_revenue",
		fillForward(out, func(q *model.Quarterly) *null.Float { return &q.Revenue }))
	report.Filled(Stage, "quarterly_earnings",
		fillForward(out, func(q *model.Quarterly) *null.Float { return &q.Earnings }))

	reportDates := uniqueDates(sorted)
	next := 0
	for i, d := range dates {
		for next < len(reportDates) && !reportDates[next].After(d) {
			next++
		}
		if next > 0 {
			out[i].DaysSinceResult = null.FloatFrom(float64(d.DaysSince(reportDates[next-1])))
		}
		if next < len(reportDates) {
			out[i].DaysToNextResult = null.FloatFrom(float64(reportDates[next].DaysSince(d)))
		}
	}

	log.Info().
		Int("events", len(reportDates)).
		Int("rows", len(out)).
		Msg("earnings mapped onto timeline")
	return out
}

func uniqueDates(sorted []model.EarningsEvent) []civil.Date {
	out := make([]civil.Date, 0, len(sorted))
	for _, e := range sorted {
		if n := len(out); n > 0 && out[n-1] == e.ReportDate {
			continue
		}
		out = append(out, e.ReportDate)
	}
	return out
}

func fillForward(rows []model.Quarterly, field func(*model.Quarterly) *null.Float) int {
	filled := 0
	var last null.Float
	for i := range rows {
		v := field(&rows[i])
		if v.Valid {
			last = *v
			continue
		}
		if last.Valid {
			*v = last
			filled++
		}
	}
	return filled
}
