package main

import (
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"MarketFusion/internal/config"
)

var (
	// Global flags, applied over the loaded config.
	configPath   string
	symbolFlag   string
	yearsFlag    int
	layoutFlag   string
	outputFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fusion",
	Short: "Fuse daily bars, yearly fundamentals and quarterly earnings into one CSV",
	Long: `fusion collects daily price history for one symbol, scrapes its yearly
statement table, maps quarterly earnings announcements onto trading days and
writes a single per-day CSV with technical indicators and derived ratios.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runOnce,
}

func init() {
	defaultPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", defaultPath, "Configuration file path")
	pf.StringVar(&symbolFlag, "symbol", "", "Ticker symbol (overrides config)")
	pf.IntVar(&yearsFlag, "years", 0, "Years of history (overrides config)")
	pf.StringVar(&layoutFlag, "layout", "", "Output layout: full or lean (overrides config)")
	pf.StringVarP(&outputFlag, "output", "o", "", "Output CSV path (overrides config)")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level (overrides config)")

	rootCmd.AddCommand(runCmd, scheduleCmd, historyCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("fusion failed")
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(exitCode(err))
	}
}

// loadConfig loads the file and environment layers, then applies flags and
// validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogger(cfg.Log.Level)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if symbolFlag != "" && symbolFlag != cfg.Symbol {
		// Derived defaults follow the new symbol; explicit values stay.
		if cfg.Output.Path == config.DefaultOutput(cfg.Symbol) {
			cfg.Output.Path = ""
		}
		if cfg.Fundamentals.Source == config.DefaultSource(cfg.Symbol) {
			cfg.Fundamentals.Source = ""
		}
		cfg.Symbol = symbolFlag
	}
	if yearsFlag > 0 {
		cfg.Years = yearsFlag
	}
	if layoutFlag != "" {
		cfg.Layout = layoutFlag
	}
	if outputFlag != "" {
		cfg.Output.Path = outputFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
}

func setupLogger(level string) {
	log.DefaultLogger = log.Logger{
		Level:  log.ParseLevel(level),
		Writer: &log.ConsoleWriter{
			ColorOutput:    log.IsTerminal(os.Stderr.Fd()),
			EndWithMessage: true,
			Writer:         os.Stderr,
		},
	}
}
