package strategy

import (
	"time"

	"QuantEngine/internal/model"
)

// buildSeries turns closes into bars with a fixed high/low half-range.
func buildSeries(symbol string, closes []float64, halfRange func(i int) float64) model.PriceSeries {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		r := halfRange(i)
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + r,
			Low:    c - r,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return model.PriceSeries{Symbol: symbol, Bars: bars}
}

func constRange(r float64) func(int) float64 { return func(int) float64 { return r } }

// linear returns n closes moving by step per bar.
func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// zigzag rises 2 then falls 1, keeping RSI in the mid/high 60s.
func zigzag(n int) []float64 {
	out := make([]float64, n)
	out[0] = 100
	for i := 1; i < n; i++ {
		if i%2 == 1 {
			out[i] = out[i-1] + 2
		} else {
			out[i] = out[i-1] - 1
		}
	}
	return out
}

func breakdownFromMask(mask int) model.FactorBreakdown {
	return model.FactorBreakdown{
		Trend:      mask&1 != 0,
		Momentum:   mask&2 != 0,
		Volatility: mask&4 != 0,
		Strength:   mask&8 != 0,
	}
}
