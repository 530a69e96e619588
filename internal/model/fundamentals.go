package model

import (
	"cloud.google.com/go/civil"
	"github.com/guregu/null/v6"
)

// YearlyFinancials is one fiscal year of scraped statement figures.
type YearlyFinancials struct {
	FiscalYear int
	Revenue    null.Float
	NetIncome  null.Float
	EPS        null.Float
	Equity     null.Float
}

// EarningsEvent is a single quarterly results announcement.
type EarningsEvent struct {
	ReportDate civil.Date
	Revenue    null.Float
	Earnings   null.Float
}

// Quarterly holds the earnings-derived fields of one trading day.
type Quarterly struct {
	Revenue          null.Float
	Earnings         null.Float
	DaysSinceResult  null.Float
	DaysToNextResult null.Float
}
