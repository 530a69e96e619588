package calculator

import (
	"time"

	"cloud.google.com/go/civil"

	"MarketFusion/internal/model"
)

// CalculateCalendar derives the seasonality features of a date. Month and
// quarter boundaries are calendar boundaries, not trading-session ones.
func CalculateCalendar(d civil.Date) model.Calendar {
	t := d.In(time.UTC)
	month := int(d.Month)
	monthEnd := d.AddDays(1).Month != d.Month
	return model.Calendar{
		Year:           d.Year,
		Month:          month,
		Day:            d.Day,
		DayOfWeek:      (int(t.Weekday()) + 6) % 7,
		DayOfYear:      t.YearDay(),
		Quarter:        (month-1)/3 + 1,
		IsMonthStart:   d.Day == 1,
		IsMonthEnd:     monthEnd,
		IsQuarterStart: d.Day == 1 && (month-1)%3 == 0,
		IsQuarterEnd:   monthEnd && month%3 == 0,
	}
}
