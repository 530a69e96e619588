package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketFusion/internal/collector"
	"MarketFusion/internal/config"
	"MarketFusion/internal/fault"
	"MarketFusion/internal/pipeline"
	"MarketFusion/internal/recorder"
)

func defaults() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyFlags_SymbolMovesDerivedDefaults(t *testing.T) {
	symbolFlag, yearsFlag, layoutFlag = "INFY.NS", 5, "lean"
	t.Cleanup(func() { symbolFlag, yearsFlag, layoutFlag = "", 0, "" })

	cfg := defaults()
	applyFlags(cfg)
	cfg.ApplyDefaults()

	assert.Equal(t, "INFY.NS", cfg.Symbol)
	assert.Equal(t, 5, cfg.Years)
	assert.Equal(t, "lean", cfg.Layout)
	assert.Equal(t, config.DefaultOutput("INFY.NS"), cfg.Output.Path)
	assert.Equal(t, config.DefaultSource("INFY.NS"), cfg.Fundamentals.Source)
}

func TestApplyFlags_ExplicitValuesKept(t *testing.T) {
	symbolFlag = "INFY.NS"
	t.Cleanup(func() { symbolFlag = "" })

	cfg := defaults()
	cfg.Output.Path = "out/custom.csv"
	cfg.Fundamentals.Source = "testdata/page.html"
	applyFlags(cfg)

	assert.Equal(t, "out/custom.csv", cfg.Output.Path)
	assert.Equal(t, "testdata/page.html", cfg.Fundamentals.Source)
}

func TestNewFetcher(t *testing.T) {
	cfg := defaults()
	for _, tc := range []struct {
		provider string
		name     string
	}{
		{"yahoo", "yahoo"},
		{"eodhd", "eodhd"},
		{"file", "file"},
	} {
		cfg.Market.Provider = tc.provider
		f, err := newFetcher(cfg)
		require.NoError(t, err)
		assert.Equal(t, tc.name, f.Name())
	}

	cfg.Market.Provider = "bloomberg"
	_, err := newFetcher(cfg)
	assert.Error(t, err)
}

func TestNewEarnings(t *testing.T) {
	cfg := defaults()
	e, err := newEarnings(cfg)
	require.NoError(t, err)
	assert.Nil(t, e)

	cfg.Earnings.Provider = "finnhub"
	e, err = newEarnings(cfg)
	require.NoError(t, err)
	assert.IsType(t, &collector.FinnhubEarnings{}, e)

	cfg.Earnings.Provider = "file"
	e, err = newEarnings(cfg)
	require.NoError(t, err)
	assert.Equal(t, "file", e.Name())
}

func TestBuildPipeline_NoEarningsLeavesCollectorNil(t *testing.T) {
	cfg := defaults()
	cfg.Market.Provider = "file"
	cfg.Market.File = "bars.csv"

	p, rec, err := buildPipeline(cfg)
	require.NoError(t, err)
	defer rec.Close()

	assert.Nil(t, p.Collector.Earnings)
	assert.Equal(t, "http", p.Scraper.Source.Name())
	assert.IsType(t, &recorder.NoopRecorder{}, rec)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 3, exitCode(fault.New(fault.DataUnavailable, "fetch", "empty")))
	assert.Equal(t, 4, exitCode(fmt.Errorf("run: %w", fault.New(fault.ScrapeSchemaError, "scrape", "no table"))))
	assert.Equal(t, 130, exitCode(context.Canceled))
	assert.Equal(t, 1, exitCode(errors.New("disk full")))
}

func TestRenderSummary(t *testing.T) {
	report := fault.NewReport()
	report.Add(fault.PartialDataWarning, "earnings", "quarterly", 1, "no provider")
	res := &pipeline.Result{RunID: "abc", Output: "data/TCS_fused.csv", Rows: 42, Report: report}

	out := renderSummary("TCS.NS", res, nil)
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, recorder.StatusDegraded)
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "PartialDataWarning")

	out = renderSummary("TCS.NS", &pipeline.Result{RunID: "x", Report: fault.NewReport()}, errors.New("boom"))
	assert.Contains(t, out, recorder.StatusFailed)
	assert.Contains(t, out, "boom")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, renderHistory(nil), "no runs recorded")
	out := renderHistory([]recorder.RunRecord{{ID: "1", Symbol: "TCS.NS", Status: recorder.StatusOK, Rows: 10}})
	assert.Contains(t, out, "TCS.NS")
	assert.Contains(t, out, "rows=10")
}
