// Package pipeline sequences one fusion run from fetch to serialization.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"MarketFusion/internal/collector"
	"MarketFusion/internal/earnings"
	"MarketFusion/internal/exporter"
	"MarketFusion/internal/fault"
	"MarketFusion/internal/features"
	"MarketFusion/internal/merger"
	"MarketFusion/internal/recorder"
	"MarketFusion/internal/scraper"
)

// Options are the per-run parameters beyond the sources themselves.
type Options struct {
	FundamentalsLocation string
	Years                int
	Layout               exporter.Layout
	Output               string
	XLSX                 bool
}

// Result describes a completed run.
type Result struct {
	RunID  string
	Output string
	XLSX   string
	Rows   int
	Report *fault.Report
}

// Pipeline runs Fetch, Scrape, Map, Merge, Derive, Sanitize and Serialize
// strictly in that order.
type Pipeline struct {
	Collector *collector.Collector
	Scraper   *scraper.Scraper
	Recorder  recorder.Recorder
	Options   Options

	Now      func() time.Time
	NewRunID func() string
}

// New creates a Pipeline. A nil recorder disables the run journal.
func New(col *collector.Collector, scr *scraper.Scraper, rec recorder.Recorder, opts Options) *Pipeline {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.Layout == "" {
		opts.Layout = exporter.LayoutFull
	}
	return &Pipeline{
		Collector: col,
		Scraper:   scr,
		Recorder:  rec,
		Options:   opts,
		Now:       time.Now,
		NewRunID:  uuid.NewString,
	}
}

// Run executes one run. A fatal error in Fetch or Scrape aborts before
// anything is written; the returned Report is still populated with what was
// recorded up to that point.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: p.NewRunID(), Report: fault.NewReport()}
	started := p.Now()

	log.Info().
		Str("run_id", res.RunID).
		Str("symbol", p.Collector.Symbol).
		Int("years", p.Collector.Years).
		Msg("fusion run started")

	err := p.run(ctx, res)
	res.Report.Log()
	p.record(res, started, err)

	if err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("fusion run failed")
		return res, err
	}
	log.Info().
		Str("run_id", res.RunID).
		Str("output", res.Output).
		Int("rows", res.Rows).
		Dur("elapsed", p.Now().Sub(started)).
		Msg("fusion run finished")
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, res *Result) error {
	report := res.Report

	md, err := p.Collector.Collect(ctx, report)
	if err != nil {
		return err
	}

	financials, err := p.Scraper.Scrape(ctx, p.Options.FundamentalsLocation, p.Options.Years, report)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	quarterly := earnings.Map(md.Timeline, md.Events, report)

	records, err := merger.Merge(md.Timeline, quarterly, financials, report)
	if err != nil {
		return err
	}

	features.Derive(records)
	features.Sanitize(records, report)

	if err := exporter.WriteFile(p.Options.Output, records, p.Options.Layout); err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	res.Output = p.Options.Output
	res.Rows = len(records)

	if p.Options.XLSX {
		path := exporter.XLSXPath(p.Options.Output)
		if err := exporter.WriteXLSX(path, records, p.Options.Layout); err != nil {
			return fmt.Errorf("serialize xlsx: %w", err)
		}
		res.XLSX = path
	}
	return nil
}

func (p *Pipeline) record(res *Result, started time.Time, runErr error) {
	run := &recorder.RunRecord{
		ID:         res.RunID,
		Symbol:     p.Collector.Symbol,
		Layout:     string(p.Options.Layout),
		Output:     res.Output,
		StartedAt:  started,
		FinishedAt: p.Now(),
		Status:     recorder.StatusOK,
		Rows:       res.Rows,
		Filled:     res.Report.TotalFilled(),
		Warnings:   res.Report.Entries(),
	}
	switch {
	case runErr != nil:
		run.Status = recorder.StatusFailed
		run.Error = runErr.Error()
		if k := fault.KindOf(runErr); k != 0 {
			run.ErrorKind = k.String()
		} else if errors.Is(runErr, context.Canceled) {
			run.ErrorKind = "Canceled"
		}
	case res.Report.Degraded():
		run.Status = recorder.StatusDegraded
	}
	if err := p.Recorder.RecordRun(run); err != nil {
		log.Warn().Err(err).Str("run_id", res.RunID).Msg("record run failed")
	}
}
