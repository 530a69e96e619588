package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"MarketFusion/internal/recorder"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the SQLite journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.SQLitePath == "" {
		return errors.New("no run journal configured (database.sqlite_path)")
	}

	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		return err
	}
	defer rec.Close()

	runs, err := rec.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderHistory(runs))
	return nil
}
