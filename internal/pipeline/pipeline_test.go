package pipeline

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketFusion/internal/collector"
	"MarketFusion/internal/exporter"
	"MarketFusion/internal/fault"
	"MarketFusion/internal/model"
	"MarketFusion/internal/recorder"
	"MarketFusion/internal/scraper"
)

const statement = `<html><body>
<table class="data-table">
  <tr><th></th><th>Mar 2022</th><th>Mar 2023</th><th>Mar 2024</th></tr>
  <tr><td>Sales +</td><td>800</td><td>1,000</td><td>1,200</td></tr>
  <tr><td>Net Profit +</td><td>400</td><td>1,000</td><td>600</td></tr>
  <tr><td>EPS</td><td>4</td><td>5</td><td>6</td></tr>
  <tr><td>Total Equity</td><td>1,600</td><td>2,000</td><td>2,400</td></tr>
</table>
</body></html>`

type fixture struct {
	bars      string
	earnings  string
	statement string
	dir       string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		bars:      filepath.Join(dir, "bars.csv"),
		earnings:  filepath.Join(dir, "earnings.json"),
		statement: filepath.Join(dir, "statement.html"),
		dir:       dir,
	}

	var b strings.Builder
	b.WriteString("Date,Open,High,Low,Close,Volume\n")
	for d := (civil.Date{Year: 2023, Month: time.January, Day: 2}); d.Before(civil.Date{Year: 2024, Month: time.July, Day: 1}); d = d.AddDays(1) {
		if wd := d.In(time.UTC).Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		price := 100 + float64(d.Day%7) + float64(d.Month)
		fmt.Fprintf(&b, "%s,%.2f,%.2f,%.2f,%.2f,%d\n", d, price-1, price+2, price-2, price, 1000+d.Day*10)
	}
	require.NoError(t, os.WriteFile(f.bars, []byte(b.String()), 0o644))
	require.NoError(t, os.WriteFile(f.earnings, []byte(`[
		{"report_date":"2023-01-10","revenue":250,"earnings":60},
		{"report_date":"2023-04-12","revenue":260,"earnings":null},
		{"report_date":"2023-07-10","revenue":270,"earnings":70}
	]`), 0o644))
	require.NoError(t, os.WriteFile(f.statement, []byte(statement), 0o644))
	return f
}

func (f fixture) pipeline(output string, layout exporter.Layout, rec recorder.Recorder) *Pipeline {
	col := collector.NewCollector(&collector.FileFetcher{Path: f.bars}, &collector.FileEarnings{Path: f.earnings}, "TCS.NS", 2)
	scr := scraper.New(&scraper.FileSource{}, scraper.NewParser("", scraper.Labels{}))
	return New(col, scr, rec, Options{
		FundamentalsLocation: f.statement,
		Years:                10,
		Layout:               layout,
		Output:               output,
	})
}

func readCSV(t *testing.T, path string) []map[string]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	out := make([]map[string]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		m := make(map[string]string, len(r))
		for i, h := range rows[0] {
			m[h] = r[i]
		}
		out = append(out, m)
	}
	return out
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t)
	first := filepath.Join(f.dir, "a", "fused.csv")
	second := filepath.Join(f.dir, "b", "fused.csv")

	r1, err := f.pipeline(first, exporter.LayoutFull, nil).Run(context.Background())
	require.NoError(t, err)
	r2, err := f.pipeline(second, exporter.LayoutFull, nil).Run(context.Background())
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, r1.Rows, r2.Rows)
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestRun_FusedValues(t *testing.T) {
	f := newFixture(t)
	out := filepath.Join(f.dir, "fused.csv")
	res, err := f.pipeline(out, exporter.LayoutFull, nil).Run(context.Background())
	require.NoError(t, err)

	rows := readCSV(t, out)
	require.Len(t, rows, res.Rows)

	for i := 1; i < len(rows); i++ {
		assert.Less(t, rows[i-1]["date"], rows[i]["date"])
	}

	byDate := map[string]map[string]string{}
	for _, r := range rows {
		byDate[r["date"]] = r
	}

	r := byDate["2023-06-01"]
	require.NotNil(t, r)
	assert.Equal(t, "1000", r["revenue"])
	assert.Equal(t, "5", r["eps"])
	assert.Equal(t, "50", r["roe"])
	assert.Equal(t, "2023", r["year"])
	assert.NotEmpty(t, r["pe"])

	r = byDate["2023-01-12"]
	require.NotNil(t, r)
	assert.Equal(t, "250", r["quarterly_revenue"])
	assert.Equal(t, "2", r["days_since_result"])

	// 2024 matches its own statement column
	r = byDate["2024-03-01"]
	require.NotNil(t, r)
	assert.Equal(t, "1200", r["revenue"])
	assert.Equal(t, "25", r["roe"])
}

func TestRun_LeanLayoutWithXLSXAndJournal(t *testing.T) {
	f := newFixture(t)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(f.dir, "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	out := filepath.Join(f.dir, "lean.csv")
	p := f.pipeline(out, exporter.LayoutLean, rec)
	p.Options.XLSX = true
	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, res.XLSX)
	rows := readCSV(t, out)
	assert.Contains(t, rows[0], "DMA_200")
	assert.Empty(t, rows[0]["Returns"])

	runs, err := rec.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, res.Rows, runs[0].Rows)
	assert.Contains(t, []string{recorder.StatusOK, recorder.StatusDegraded}, runs[0].Status)
}

func TestRun_FetchFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(f.dir, "runs.db"))
	require.NoError(t, err)
	defer rec.Close()

	out := filepath.Join(f.dir, "fused.csv")
	p := f.pipeline(out, exporter.LayoutFull, rec)
	p.Collector.Fetcher = &collector.MockFetcher{DailyData: []model.OHLCV{}}

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.DataUnavailable, fault.KindOf(err))
	assert.NoFileExists(t, out)

	runs, err := rec.RecentRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, recorder.StatusFailed, runs[0].Status)
	assert.Equal(t, "DataUnavailable", runs[0].ErrorKind)
}

func TestRun_ScrapeFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.statement, []byte(`<html><p>captcha</p></html>`), 0o644))

	out := filepath.Join(f.dir, "fused.csv")
	_, err := f.pipeline(out, exporter.LayoutFull, nil).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, fault.ScrapeSchemaError, fault.KindOf(err))
	assert.NoFileExists(t, out)
}

func TestRun_EarningsFailureDegrades(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.earnings))

	out := filepath.Join(f.dir, "fused.csv")
	res, err := f.pipeline(out, exporter.LayoutFull, nil).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Report.Degraded())

	for _, r := range readCSV(t, out) {
		assert.Empty(t, r["quarterly_revenue"])
		assert.Empty(t, r["days_to_next_result"])
	}
}

func TestRun_NonFiniteBarsNeverReachOutput(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(f.bars, []byte("Date,Open,High,Low,Close,Volume\n"+
		"2023-01-02,1.4,1.6,1.3,1.5,100\n"+
		"2023-01-03,1.4,1.6,1.3,Inf,100\n"+
		"2023-01-04,1.4,1.6,1.3,NaN,100\n"+
		"2023-01-05,1.5,1.7,1.4,1.6,100\n"), 0o644))

	out := filepath.Join(f.dir, "fused.csv")
	_, err := f.pipeline(out, exporter.LayoutFull, nil).Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Inf")
	assert.NotContains(t, string(raw), "NaN")

	rows := readCSV(t, out)
	require.Len(t, rows, 2)
	last := rows[1]
	assert.Equal(t, "2023-01-05", last["date"])
	assert.Equal(t, "1.6", last["close"])
	assert.NotEqual(t, "1.5", last["ema_12"])
	assert.NotEqual(t, "0", last["macd"])
}

func TestRun_Canceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(f.dir, "fused.csv")
	_, err := f.pipeline(out, exporter.LayoutFull, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, out)
}
