package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"QuantEngine/internal/model"
	"QuantEngine/internal/strategy"
)

// ErrNoData means the provider returned an empty series for a ticker.
var ErrNoData = errors.New("no data returned")

// Options tunes one evaluation pass.
type Options struct {
	Lookback      string  // provider period, e.g. "6mo"
	Interval      string  // bar interval, e.g. "1d"
	Workers       int     // concurrent tickers, <= 0 means 4
	RatePerSecond float64 // provider requests per second, <= 0 means unlimited
}

// Collector runs the fetch-then-score pass over a ticker universe.
type Collector struct {
	Fetcher Fetcher
	Options Options
	limiter *rate.Limiter
}

// Result holds the scored records in universe order and the tickers that
// were skipped with the reason.
type Result struct {
	Records []model.ScoreRecord
	Skipped map[string]string
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, opts Options) *Collector {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Lookback == "" {
		opts.Lookback = "6mo"
	}
	if opts.Interval == "" {
		opts.Interval = "1d"
	}
	limit := rate.Inf
	burst := 1
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
		burst = opts.Workers
	}
	return &Collector{
		Fetcher: fetcher,
		Options: opts,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// ScoreTicker fetches one ticker and scores it.
func (c *Collector) ScoreTicker(ctx context.Context, symbol string) (model.ScoreRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return model.ScoreRecord{}, fmt.Errorf("rate limit wait: %w", err)
	}
	series, err := c.Fetcher.Fetch(ctx, symbol, c.Options.Lookback, c.Options.Interval)
	if err != nil {
		return model.ScoreRecord{}, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if series.Empty() {
		return model.ScoreRecord{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return strategy.Evaluate(series)
}

// Evaluate scores every ticker concurrently. A failing ticker is logged and
// skipped; it never stops the rest of the universe from being evaluated.
func (c *Collector) Evaluate(ctx context.Context, universe []string) Result {
	records := make([]*model.ScoreRecord, len(universe))
	skipped := make(map[string]string)
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(c.Options.Workers)

	for i, symbol := range universe {
		i, symbol := i, symbol
		g.Go(func() error {
			rec, err := c.ScoreTicker(ctx, symbol)
			if err != nil {
				logSkip(symbol, err)
				mu.Lock()
				skipped[symbol] = err.Error()
				mu.Unlock()
				return nil
			}
			log.Debug().Str("ticker", symbol).Int("score", rec.Score).Float64("price", rec.LastPrice).Msg("ticker scored")
			records[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	out := Result{Records: make([]model.ScoreRecord, 0, len(universe)), Skipped: skipped}
	for _, rec := range records {
		if rec != nil {
			out.Records = append(out.Records, *rec)
		}
	}
	log.Info().
		Str("source", c.Fetcher.Name()).
		Int("universe", len(universe)).
		Int("scored", len(out.Records)).
		Int("skipped", len(skipped)).
		Msg("universe evaluated")
	return out
}

func logSkip(symbol string, err error) {
	switch {
	case errors.Is(err, ErrNoData):
		log.Info().Str("ticker", symbol).Msg("no data, skipping ticker")
	case errors.Is(err, strategy.ErrInsufficientData):
		log.Warn().Str("ticker", symbol).Err(err).Msg("series too short, skipping ticker")
	default:
		log.Error().Str("ticker", symbol).Err(err).Msg("ticker evaluation failed, skipping")
	}
}
