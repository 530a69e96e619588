package scraper

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
)

// DefaultTableSelector matches the statement tables of screener-style pages.
const DefaultTableSelector = "table.data-table"

// Labels names the statement rows that feed each yearly field.
type Labels struct {
	Revenue   string `yaml:"revenue"`
	NetIncome string `yaml:"net_income"`
	EPS       string `yaml:"eps"`
	Equity    string `yaml:"equity"`
}

// DefaultLabels returns the row labels used by screener.in.
func DefaultLabels() Labels {
	return Labels{
		Revenue:   "Sales",
		NetIncome: "Net Profit",
		EPS:       "EPS",
		Equity:    "Total Equity",
	}
}

// row is one statement line: its normalized label and raw cell texts.
type row struct {
	label  string
	values []string
}

// rows keeps statement lines in document order. A label may occur more than
// once across tables; lookup returns the last occurrence.
type rows []row

func (rs rows) lookup(label string) ([]string, bool) {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].label == label {
			return rs[i].values, true
		}
	}
	return nil, false
}

// Parser turns a statement page into yearly financials.
type Parser struct {
	Selector string
	Labels   Labels
}

// NewParser returns a parser with defaults filled in.
func NewParser(selector string, labels Labels) *Parser {
	if selector == "" {
		selector = DefaultTableSelector
	}
	def := DefaultLabels()
	if labels.Revenue == "" {
		labels.Revenue = def.Revenue
	}
	if labels.NetIncome == "" {
		labels.NetIncome = def.NetIncome
	}
	if labels.EPS == "" {
		labels.EPS = def.EPS
	}
	if labels.Equity == "" {
		labels.Equity = def.Equity
	}
	return &Parser{Selector: selector, Labels: labels}
}

// Parse extracts the most recent `years` fiscal years from the document.
// Structural problems are fatal ScrapeSchemaErrors; short rows, absent rows
// and unparseable cells only degrade the report.
func (p *Parser) Parse(r io.Reader, years int, report *fault.Report) ([]model.YearlyFinancials, error) {
	const op = "parse statement"

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fault.Wrap(fault.ScrapeSchemaError, op, err)
	}

	tables := doc.Find(p.Selector)
	if tables.Length() == 0 {
		return nil, fault.New(fault.ScrapeSchemaError, op, "no table matches %q", p.Selector)
	}

	var axis []int
	var lines rows
	tables.Each(func(_ int, table *goquery.Selection) {
		trs := table.Find("tr")
		if trs.Length() == 0 {
			return
		}
		if ys := headerYears(trs.First()); len(ys) > 0 {
			axis = ys
		}
		trs.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("th, td")
			if cells.Length() < 2 {
				return
			}
			var texts []string
			cells.Each(func(_ int, c *goquery.Selection) {
				texts = append(texts, strings.TrimSpace(c.Text()))
			})
			lines = append(lines, row{label: normalizeLabel(texts[0]), values: texts[1:]})
		})
	})

	if len(axis) == 0 {
		return nil, fault.New(fault.ScrapeSchemaError, op, "no header cell carries a 4-digit year")
	}
	if years > 0 && len(axis) > years {
		axis = axis[len(axis)-years:]
	}

	fields := []struct {
		label string
		set   func(*model.YearlyFinancials, null.Float)
	}{
		{p.Labels.Revenue, func(y *model.YearlyFinancials, v null.Float) { y.Revenue = v }},
		{p.Labels.NetIncome, func(y *model.YearlyFinancials, v null.Float) { y.NetIncome = v }},
		{p.Labels.EPS, func(y *model.YearlyFinancials, v null.Float) { y.EPS = v }},
		{p.Labels.Equity, func(y *model.YearlyFinancials, v null.Float) { y.Equity = v }},
	}

	cols := make([]model.YearlyFinancials, len(axis))
	for i, y := range axis {
		cols[i].FiscalYear = y
	}
	for _, f := range fields {
		label := normalizeLabel(f.label)
		raw, ok := lines.lookup(label)
		if !ok {
			report.Add(fault.PartialDataWarning, Stage, label, 1, "statement row not found")
		}
		aligned, padded := rightAlign(raw, len(axis))
		if ok && padded > 0 {
			report.Add(fault.PartialDataWarning, Stage, label, padded,
				fmt.Sprintf("row shorter than year axis; %d leading years left missing", padded))
		}
		for i, s := range aligned {
			v, ok := coerce(s)
			if !ok {
				report.Add(fault.NumericCoercionFailure, Stage, label, 1,
					fmt.Sprintf("unparseable value %q", s))
			}
			f.set(&cols[i], v)
		}
	}

	return dedupeYears(cols, report), nil
}

// headerYears reads fiscal years from the trailing four digits of each
// non-empty header cell after the first.
func headerYears(tr *goquery.Selection) []int {
	var out []int
	tr.Find("th").Slice(1, goquery.ToEnd).Each(func(_ int, th *goquery.Selection) {
		text := strings.TrimSpace(th.Text())
		if len(text) < 4 {
			return
		}
		suffix := text[len(text)-4:]
		if strings.Trim(suffix, "0123456789") != "" {
			return
		}
		y, _ := strconv.Atoi(suffix)
		out = append(out, y)
	})
	return out
}

func normalizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "+")
	return strings.TrimSpace(s)
}

// rightAlign fits values to n entries, keeping the most recent ones. Short
// rows are padded on the left with empty cells; the pad count is returned.
func rightAlign(values []string, n int) ([]string, int) {
	if len(values) >= n {
		return values[len(values)-n:], 0
	}
	pad := n - len(values)
	out := make([]string, pad, n)
	return append(out, values...), pad
}

// coerce parses a statement cell. Empty and "none" cells are missing without
// complaint; anything else that fails to parse is missing and reported.
func coerce(s string) (null.Float, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, ",", ""), "\u00a0", ""))
	if s == "" || strings.EqualFold(s, "none") {
		return null.Float{}, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return null.Float{}, false
	}
	return null.FloatFrom(d.InexactFloat64()), true
}

// dedupeYears keeps one entry per fiscal year, taking the rightmost column,
// and orders the result by year.
func dedupeYears(cols []model.YearlyFinancials, report *fault.Report) []model.YearlyFinancials {
	byYear := make(map[int]model.YearlyFinancials, len(cols))
	for _, c := range cols {
		if _, dup := byYear[c.FiscalYear]; dup {
			report.Add(fault.PartialDataWarning, Stage, "year", 1, "duplicate fiscal year column; rightmost kept")
		}
		byYear[c.FiscalYear] = c
	}
	out := make([]model.YearlyFinancials, 0, len(byYear))
	for _, c := range byYear {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiscalYear < out[j].FiscalYear })
	return out
}
