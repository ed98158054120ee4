package calculator

import "math"

// TrueRange returns the per-bar true range. The first bar has no previous
// close and uses high-low.
func TrueRange(high, low, close []float64) []float64 {
	n := minLen(high, low, close)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		tr := high[i] - low[i]
		if i > 0 {
			tr = math.Max(tr, math.Abs(high[i]-close[i-1]))
			tr = math.Max(tr, math.Abs(low[i]-close[i-1]))
		}
		out[i] = tr
	}
	return out
}

// ATR computes the Wilder average true range. The first defined value, at
// index period-1, is the plain mean of the first `period` true ranges.
func ATR(high, low, close []float64, period int) []float64 {
	tr := TrueRange(high, low, close)
	out := nanSeries(len(tr))
	if period <= 0 || len(tr) < period {
		return out
	}
	var seed float64
	for i := 0; i < period; i++ {
		seed += tr[i]
	}
	prev := seed / float64(period)
	out[period-1] = prev
	for i := period; i < len(tr); i++ {
		prev = (prev*float64(period-1) + tr[i]) / float64(period)
		out[i] = prev
	}
	return out
}

func minLen(series ...[]float64) int {
	n := -1
	for _, s := range series {
		if n == -1 || len(s) < n {
			n = len(s)
		}
	}
	if n < 0 {
		return 0
	}
	return n
}
