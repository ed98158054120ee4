package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"QuantEngine/internal/model"
)

// CSVFetcher reads bars from <Dir>/<symbol>.csv with the header
// date,open,high,low,close,volume. A missing file is an unavailable ticker.
type CSVFetcher struct {
	Dir string
}

// NewCSVFetcher creates a fetcher backed by a directory of CSV files.
func NewCSVFetcher(dir string) *CSVFetcher {
	return &CSVFetcher{Dir: dir}
}

func (f *CSVFetcher) Name() string { return "csv" }

type csvBar struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

var csvDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Fetch loads the file and keeps the bars within the lookback period. Only
// daily files are supported, so interval is informational.
func (f *CSVFetcher) Fetch(ctx context.Context, symbol, lookback, _ string) (model.PriceSeries, error) {
	series := model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	if err := ctx.Err(); err != nil {
		return series, err
	}

	file, err := os.Open(filepath.Join(f.Dir, symbol+".csv"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return series, nil
		}
		return series, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	var rows []*csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return series, fmt.Errorf("parse csv %s: %w", symbol, err)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, r := range rows {
		ts, err := parseCSVDate(r.Date)
		if err != nil {
			return series, fmt.Errorf("parse csv %s: %w", symbol, err)
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	series.Bars = trimToLookback(normalizeBars(bars), lookback)
	return series, nil
}
