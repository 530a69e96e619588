package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. FUSION_MARKET_API_KEY.
// Leaf fields use split_words: an explicit envconfig name is also looked up
// without the prefix.
const EnvPrefix = "FUSION"

// DefaultRetries applies when market.retries is unset; an explicit 0 disables
// retries.
const DefaultRetries = 3

// DefaultPath is used when neither CONFIG_PATH nor --config is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Symbol string `yaml:"symbol" split_words:"true" validate:"required"`
	Years  int    `yaml:"years" split_words:"true" validate:"min=1,max=50"`
	Layout string `yaml:"layout" split_words:"true" validate:"oneof=full lean"`

	Market       MarketConfig       `yaml:"market" envconfig:"MARKET"`
	Earnings     EarningsConfig     `yaml:"earnings" envconfig:"EARNINGS"`
	Fundamentals FundamentalsConfig `yaml:"fundamentals" envconfig:"FUNDAMENTALS"`
	Output       OutputConfig       `yaml:"output" envconfig:"OUTPUT"`
	Database     DatabaseConfig     `yaml:"database" envconfig:"DATABASE"`
	Schedule     ScheduleConfig     `yaml:"schedule" envconfig:"SCHEDULE"`
	Log          LogConfig          `yaml:"log" envconfig:"LOG"`

	Proxy string `yaml:"proxy" split_words:"true"`
}

// MarketConfig selects the daily bar provider.
type MarketConfig struct {
	Provider  string        `yaml:"provider" split_words:"true" validate:"oneof=yahoo eodhd file"`
	BaseURL   string        `yaml:"base_url" split_words:"true" validate:"omitempty,url"`
	APIKey    string        `yaml:"api_key" split_words:"true" validate:"required_if=Provider eodhd"`
	File      string        `yaml:"file" split_words:"true" validate:"required_if=Provider file"`
	Timeout   time.Duration `yaml:"timeout" split_words:"true" validate:"min=0"`
	Retries   *int          `yaml:"retries" split_words:"true" validate:"omitempty,min=0,max=10"`
	RateLimit int           `yaml:"rate_limit" split_words:"true" validate:"min=0"`
}

// RetryCount returns the configured retry budget, or DefaultRetries if unset.
func (m MarketConfig) RetryCount() int {
	if m.Retries == nil {
		return DefaultRetries
	}
	return *m.Retries
}

// EarningsConfig selects the quarterly earnings provider.
type EarningsConfig struct {
	Provider string `yaml:"provider" split_words:"true" validate:"oneof=finnhub file none"`
	BaseURL  string `yaml:"base_url" split_words:"true" validate:"omitempty,url"`
	APIKey   string `yaml:"api_key" split_words:"true"`
	File     string `yaml:"file" split_words:"true" validate:"required_if=Provider file"`
}

// FundamentalsConfig locates and describes the statement page.
type FundamentalsConfig struct {
	Source        string       `yaml:"source" split_words:"true" validate:"required"`
	TableSelector string       `yaml:"table_selector" split_words:"true"`
	UserAgent     string       `yaml:"user_agent" split_words:"true"`
	Render        bool         `yaml:"render" split_words:"true"`
	Labels        LabelsConfig `yaml:"labels" envconfig:"LABELS"`
}

// LabelsConfig names the statement rows read for each yearly field.
type LabelsConfig struct {
	Revenue   string `yaml:"revenue" split_words:"true"`
	NetIncome string `yaml:"net_income" split_words:"true"`
	EPS       string `yaml:"eps" split_words:"true"`
	Equity    string `yaml:"equity" split_words:"true"`
}

type OutputConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"`
	XLSX bool   `yaml:"xlsx" split_words:"true"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level" split_words:"true" validate:"oneof=trace debug info warn error"`
}

// Load reads config from a YAML file, then applies .env and environment
// overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if cfg.Proxy == "" {
		cfg.Proxy = os.Getenv("HTTPS_PROXY")
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every unset field. It is safe to call more than once.
func (c *Config) ApplyDefaults() {
	if c.Symbol == "" {
		c.Symbol = "TCS.NS"
	}
	if c.Years == 0 {
		c.Years = 10
	}
	c.Layout = strings.ToLower(c.Layout)
	if c.Layout == "" {
		c.Layout = "full"
	}

	if c.Market.Provider == "" {
		c.Market.Provider = "yahoo"
	}
	if c.Market.Timeout == 0 {
		c.Market.Timeout = 30 * time.Second
	}
	if c.Market.Retries == nil {
		n := DefaultRetries
		c.Market.Retries = &n
	}
	if c.Market.RateLimit == 0 {
		c.Market.RateLimit = 10
	}

	if c.Earnings.Provider == "" {
		c.Earnings.Provider = "none"
	}

	if c.Fundamentals.Source == "" {
		c.Fundamentals.Source = DefaultSource(c.Symbol)
	}
	if c.Fundamentals.TableSelector == "" {
		c.Fundamentals.TableSelector = "table.data-table"
	}
	if c.Fundamentals.UserAgent == "" {
		c.Fundamentals.UserAgent = "Mozilla/5.0"
	}
	if c.Fundamentals.Labels.Revenue == "" {
		c.Fundamentals.Labels.Revenue = "Sales"
	}
	if c.Fundamentals.Labels.NetIncome == "" {
		c.Fundamentals.Labels.NetIncome = "Net Profit"
	}
	if c.Fundamentals.Labels.EPS == "" {
		c.Fundamentals.Labels.EPS = "EPS"
	}
	if c.Fundamentals.Labels.Equity == "" {
		c.Fundamentals.Labels.Equity = "Total Equity"
	}

	if c.Output.Path == "" {
		c.Output.Path = DefaultOutput(c.Symbol)
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 18 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// DefaultSource is the statement page used when none is configured.
func DefaultSource(symbol string) string {
	return "https://www.screener.in/company/" + baseSymbol(symbol) + "/consolidated/"
}

// DefaultOutput is the CSV path used when none is configured.
func DefaultOutput(symbol string) string {
	return filepath.Join("data", baseSymbol(symbol)+"_fused.csv")
}

// baseSymbol strips the exchange suffix: "TCS.NS" -> "TCS".
func baseSymbol(symbol string) string {
	if i := strings.IndexByte(symbol, '.'); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
