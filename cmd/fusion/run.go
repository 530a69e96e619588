package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"MarketFusion/internal/fault"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one fusion and write the CSV",
	Long:  `Fetches, scrapes, maps, merges, derives and writes one fused CSV, then prints a run summary.`,
	Args:  cobra.NoArgs,
	RunE:  runOnce,
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, rec, err := buildPipeline(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(ctx)
	if res != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(cfg.Symbol, res, err))
	}
	return err
}

// exitCode maps a run error onto a process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 130
	case fault.KindOf(err) == fault.DataUnavailable:
		return 3
	case fault.KindOf(err) == fault.ScrapeSchemaError:
		return 4
	default:
		return 1
	}
}

