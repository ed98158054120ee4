package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultUniverse is the ticker set scored when none is configured.
var DefaultUniverse = []string{
	"SHOP.TO", "SU.TO", "RY.TO", "TD.TO", "BNS.TO",
	"ENB.TO", "CNQ.TO", "CP.TO", "CNR.TO", "BAM.TO",
	"TRP.TO", "MFC.TO", "WCN.TO", "ATD.TO", "CM.TO",
}

// Data providers understood by the collector.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
	ProviderCSV   = "csv"
	ProviderMock  = "mock"
)

// Config holds all application configuration.
type Config struct {
	Universe []string `yaml:"universe"`
	Engine   struct {
		InitialCapital float64 `yaml:"initial_capital"`
		TopN           int     `yaml:"top_n"`
		Lookback       string  `yaml:"lookback"`
		Interval       string  `yaml:"interval"`
		MoveFactor     float64 `yaml:"move_factor"`
		Workers        int     `yaml:"workers"`
		RatePerSecond  float64 `yaml:"rate_per_second"`
	} `yaml:"engine"`
	DataSource struct {
		Provider  string  `yaml:"provider"`
		BaseURL   string  `yaml:"base_url"`
		APIKey    string  `yaml:"api_key"`
		CSVDir    string  `yaml:"csv_dir"`
		MockPrice float64 `yaml:"mock_price"`
	} `yaml:"data_source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, loads a .env file from the working
// directory if present, then applies environment variable overrides and
// defaults. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the process.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("QUANT_UNIVERSE"); v != "" {
		c.Universe = splitList(v)
	}
	if err := envFloat("INITIAL_CAPITAL", &c.Engine.InitialCapital); err != nil {
		return err
	}
	if err := envInt("TOP_N", &c.Engine.TopN); err != nil {
		return err
	}
	if v := os.Getenv("LOOKBACK"); v != "" {
		c.Engine.Lookback = v
	}
	if v := os.Getenv("INTERVAL"); v != "" {
		c.Engine.Interval = v
	}
	if err := envFloat("MOVE_FACTOR", &c.Engine.MoveFactor); err != nil {
		return err
	}
	if err := envInt("WORKERS", &c.Engine.Workers); err != nil {
		return err
	}
	if err := envFloat("RATE_PER_SECOND", &c.Engine.RatePerSecond); err != nil {
		return err
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	if v := os.Getenv("CSV_DIR"); v != "" {
		c.DataSource.CSVDir = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Universe) == 0 {
		c.Universe = append([]string(nil), DefaultUniverse...)
	}
	if c.Engine.InitialCapital == 0 {
		c.Engine.InitialCapital = 100000
	}
	if c.Engine.TopN == 0 {
		c.Engine.TopN = 3
	}
	if c.Engine.Lookback == "" {
		c.Engine.Lookback = "6mo"
	}
	if c.Engine.Interval == "" {
		c.Engine.Interval = "1d"
	}
	if c.Engine.MoveFactor == 0 {
		c.Engine.MoveFactor = 0.01
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 4
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "@every 60s"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return errors.New("universe must list at least one ticker")
	}
	if c.Engine.InitialCapital <= 0 {
		return errors.New("engine.initial_capital must be positive")
	}
	if c.Engine.TopN < 1 {
		return errors.New("engine.top_n must be at least 1")
	}
	if math.IsNaN(c.Engine.MoveFactor) || c.Engine.MoveFactor < 0 || c.Engine.MoveFactor >= 1 {
		return errors.New("engine.move_factor must be in [0, 1)")
	}
	if c.Engine.Workers < 1 {
		return errors.New("engine.workers must be at least 1")
	}
	if c.Engine.RatePerSecond < 0 {
		return errors.New("engine.rate_per_second must not be negative")
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return errors.New("data_source.base_url is required for the rest provider")
		}
	case ProviderCSV:
		if c.DataSource.CSVDir == "" {
			return errors.New("data_source.csv_dir is required for the csv provider")
		}
	default:
		return fmt.Errorf("unknown data_source.provider %q", c.DataSource.Provider)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = f
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("env %s: %w", key, err)
	}
	*dst = n
	return nil
}
