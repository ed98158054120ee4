package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"QuantEngine/internal/collector"
	"QuantEngine/internal/config"
	"QuantEngine/internal/logger"
	"QuantEngine/internal/recorder"
	"QuantEngine/internal/session"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Factor ranking and portfolio simulation engine",
	Long: `Scores a universe of equities on trend, momentum, volatility and
relative strength, selects the top N for equal-weight allocation and tracks a
simulated equity curve with Sharpe ratio and max drawdown.

Examples:
  quant run --config configs/config.yaml
  quant rank --provider mock
  quant simulate gain gain loss:0.02`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads and validates configuration and sets up logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	var f collector.Fetcher
	switch cfg.DataSource.Provider {
	case config.ProviderYahoo:
		f = collector.NewYahooFetcher(cfg.Proxy)
	case config.ProviderREST:
		f = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.ProviderCSV:
		f = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	case config.ProviderMock:
		price := cfg.DataSource.MockPrice
		if price == 0 {
			price = 100
		}
		f = &collector.MockFetcher{Price: price}
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataSource.Provider)
	}
	log.Info().Str("provider", f.Name()).Msg("data source selected")
	return f, nil
}

func newCollector(cfg *config.Config) (*collector.Collector, error) {
	f, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	return collector.NewCollector(f, collector.Options{
		Lookback:      cfg.Engine.Lookback,
		Interval:      cfg.Engine.Interval,
		Workers:       cfg.Engine.Workers,
		RatePerSecond: cfg.Engine.RatePerSecond,
	}), nil
}

func newSession(cfg *config.Config) *session.Session {
	return session.New(decimal.NewFromFloat(cfg.Engine.InitialCapital), cfg.Engine.TopN)
}

// newRecorder falls back to the noop recorder when SQLite is not configured
// or cannot be opened.
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
