package main

import (
	"fmt"

	"github.com/phuslu/log"

	"MarketFusion/internal/collector"
	"MarketFusion/internal/config"
	"MarketFusion/internal/exporter"
	"MarketFusion/internal/httpclient"
	"MarketFusion/internal/pipeline"
	"MarketFusion/internal/recorder"
	"MarketFusion/internal/scraper"
)

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	m := cfg.Market
	switch m.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(m.Timeout, cfg.Proxy, m.RetryCount()), nil
	case "eodhd":
		return collector.NewEODHDFetcher(m.BaseURL, m.APIKey, m.RateLimit, httpclient.Options{
			Timeout: m.Timeout,
			Retries: m.RetryCount(),
			Proxy:   cfg.Proxy,
		}), nil
	case "file":
		return &collector.FileFetcher{Path: m.File}, nil
	}
	return nil, fmt.Errorf("unknown market provider %q", m.Provider)
}

// newEarnings returns nil when no provider is configured.
func newEarnings(cfg *config.Config) (collector.EarningsFetcher, error) {
	e := cfg.Earnings
	switch e.Provider {
	case "none":
		return nil, nil
	case "finnhub":
		return collector.NewFinnhubEarnings(e.BaseURL, e.APIKey, httpclient.Options{
			Timeout: cfg.Market.Timeout,
			Retries: cfg.Market.RetryCount(),
			Proxy:   cfg.Proxy,
		}), nil
	case "file":
		return &collector.FileEarnings{Path: e.File}, nil
	}
	return nil, fmt.Errorf("unknown earnings provider %q", e.Provider)
}

func newScraper(cfg *config.Config) *scraper.Scraper {
	f := cfg.Fundamentals
	src := scraper.SourceFor(f.Source, f.Render, httpclient.Options{
		Timeout:   cfg.Market.Timeout,
		Retries:   cfg.Market.RetryCount(),
		Proxy:     cfg.Proxy,
		UserAgent: f.UserAgent,
	})
	parser := scraper.NewParser(f.TableSelector, scraper.Labels{
		Revenue:   f.Labels.Revenue,
		NetIncome: f.Labels.NetIncome,
		EPS:       f.Labels.EPS,
		Equity:    f.Labels.Equity,
	})
	return scraper.New(src, parser)
}

// newRecorder falls back to the no-op journal when SQLite cannot be opened.
func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// buildPipeline wires every stage from cfg. The caller closes the recorder.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, recorder.Recorder, error) {
	layout, err := exporter.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, nil, err
	}
	earn, err := newEarnings(cfg)
	if err != nil {
		return nil, nil, err
	}

	col := collector.NewCollector(fetcher, nil, cfg.Symbol, cfg.Years)
	if earn != nil {
		col.Earnings = earn
	}

	rec := newRecorder(cfg)
	p := pipeline.New(col, newScraper(cfg), rec, pipeline.Options{
		FundamentalsLocation: cfg.Fundamentals.Source,
		Years:                cfg.Years,
		Layout:               layout,
		Output:               cfg.Output.Path,
		XLSX:                 cfg.Output.XLSX,
	})

	log.Info().
		Str("symbol", cfg.Symbol).
		Str("market", fetcher.Name()).
		Str("earnings", cfg.Earnings.Provider).
		Str("fundamentals", p.Scraper.Source.Name()).
		Str("layout", string(layout)).
		Msg("pipeline configured")
	return p, rec, nil
}
