package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"FundQuant/internal/bond"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Data providers.
const (
	ProviderMarketstack = "marketstack"
	ProviderYahoo       = "yahoo"
	ProviderMock        = "mock"
)

// BondConfig describes one bond to value on every cycle.
type BondConfig struct {
	Name        string   `yaml:"name"`
	ParValue    float64  `yaml:"par_value"`
	AnnualRate  float64  `yaml:"annual_rate"`
	Frequency   string   `yaml:"frequency"`
	Maturity    string   `yaml:"maturity"` // YYYY-MM-DD
	MarketPrice *float64 `yaml:"market_price"`
}

// Issue creates the bond as of now.
func (b BondConfig) Issue() (*bond.Bond, error) {
	freq, err := bond.ParseFrequency(b.Frequency)
	if err != nil {
		return nil, err
	}
	maturity, err := time.Parse("2006-01-02", b.Maturity)
	if err != nil {
		return nil, fmt.Errorf("maturity: %w", err)
	}
	return bond.Issue(b.ParValue, b.AnnualRate, freq, maturity)
}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider    string   `yaml:"provider"`
		BaseURL     string   `yaml:"base_url"`
		APIKey      string   `yaml:"api_key"`
		Symbols     []string `yaml:"symbols"`
		HistoryDays int      `yaml:"history_days"`
		RateLimit   int      `yaml:"rate_limit"`
	} `yaml:"data_source"`
	Portfolio struct {
		File         string            `yaml:"file"`
		InitialValue string            `yaml:"initial_value"`
		Allocations  map[string]string `yaml:"allocations"`
	} `yaml:"portfolio"`
	Analysis struct {
		RiskFreeRate float64            `yaml:"risk_free_rate"`
		Corrected    bool               `yaml:"corrected"`
		Percentiles  []float64          `yaml:"percentiles"`
		Weights      map[string]float64 `yaml:"weights"`
	} `yaml:"analysis"`
	Bonds    []BondConfig `yaml:"bonds"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env and the YAML file at path (both optional), then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

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
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("MARKETSTACK_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.DataSource.Symbols = splitList(v)
	}
	if v := os.Getenv("HISTORY_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HISTORY_DAYS: %w", err)
		}
		cfg.DataSource.HistoryDays = n
	}
	if v := os.Getenv("PORTFOLIO_FILE"); v != "" {
		cfg.Portfolio.File = v
	}
	if v := os.Getenv("INITIAL_VALUE"); v != "" {
		cfg.Portfolio.InitialValue = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("RISK_FREE_RATE: %w", err)
		}
		cfg.Analysis.RiskFreeRate = rate
	}
	if v := os.Getenv("CORRECTED_STATS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CORRECTED_STATS: %w", err)
		}
		cfg.Analysis.Corrected = b
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = ProviderMarketstack
	}
	cfg.DataSource.Provider = strings.ToLower(cfg.DataSource.Provider)
	if cfg.DataSource.HistoryDays == 0 {
		cfg.DataSource.HistoryDays = 252
	}
	if cfg.Portfolio.File == "" {
		cfg.Portfolio.File = "data/portfolio.json"
	}
	if cfg.Portfolio.InitialValue == "" {
		cfg.Portfolio.InitialValue = "0"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fundquant.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return cfg, nil
}

// InitialValue parses portfolio.initial_value.
func (c *Config) InitialValue() (decimal.Decimal, error) {
	return decimal.NewFromString(c.Portfolio.InitialValue)
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderMarketstack:
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for marketstack")
		}
	case ProviderYahoo, ProviderMock:
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if len(c.DataSource.Symbols) == 0 {
		return fmt.Errorf("data_source.symbols is required")
	}
	if c.DataSource.HistoryDays < 2 {
		return fmt.Errorf("data_source.history_days must be at least 2")
	}

	iv, err := c.InitialValue()
	if err != nil {
		return fmt.Errorf("portfolio.initial_value: %w", err)
	}
	if iv.IsNegative() {
		return fmt.Errorf("portfolio.initial_value must not be negative")
	}
	total := decimal.Zero
	for ticker, amount := range c.Portfolio.Allocations {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return fmt.Errorf("portfolio.allocations[%s]: %w", ticker, err)
		}
		total = total.Add(d)
	}
	if iv.IsPositive() && total.GreaterThan(iv) {
		return fmt.Errorf("portfolio.allocations total %s exceeds initial_value %s", total, iv)
	}

	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}

	for _, p := range c.Analysis.Percentiles {
		if p < 0 || p > 100 {
			return fmt.Errorf("analysis.percentiles: %v is outside 0..100", p)
		}
	}

	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).
		Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}

	for i, b := range c.Bonds {
		if b.Name == "" {
			return fmt.Errorf("bonds[%d].name is required", i)
		}
		if b.ParValue <= 0 {
			return fmt.Errorf("bonds[%d] %s: par_value must be positive", i, b.Name)
		}
		if _, err := bond.ParseFrequency(b.Frequency); err != nil {
			return fmt.Errorf("bonds[%d] %s: %w", i, b.Name, err)
		}
		if _, err := time.Parse("2006-01-02", b.Maturity); err != nil {
			return fmt.Errorf("bonds[%d] %s: maturity: %w", i, b.Name, err)
		}
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

// TelegramEnabled reports whether reports should also be sent to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
