package collector

import (
	"context"
	"sort"

	"QuantEngine/internal/model"
)

// Fetcher retrieves daily bars for one ticker. An empty series means the
// ticker is unavailable; callers skip it rather than treat it as an error.
type Fetcher interface {
	Fetch(ctx context.Context, symbol, lookback, interval string) (model.PriceSeries, error)
	Name() string
}

// normalizeBars orders bars chronologically and drops duplicate dates,
// keeping the last bar seen for a date.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && sameDay(out[n-1], b) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b model.OHLCV) bool {
	ay, am, ad := a.Time.UTC().Date()
	by, bm, bd := b.Time.UTC().Date()
	return ay == by && am == bm && ad == bd
}
