package model

import "math"

// IndicatorSet holds per-bar indicator values aligned index-for-index with a
// PriceSeries. Bars inside an indicator's warm-up window carry NaN.
type IndicatorSet struct {
	EMA20 []float64
	EMA50 []float64
	RSI14 []float64
	ATR14 []float64
}

// Len returns the number of aligned bars.
func (s IndicatorSet) Len() int { return len(s.EMA20) }

// Ready reports whether every indicator is defined at bar i.
func (s IndicatorSet) Ready(i int) bool {
	if i < 0 || i >= s.Len() {
		return false
	}
	return Defined(s.EMA20[i]) && Defined(s.EMA50[i]) && Defined(s.RSI14[i]) && Defined(s.ATR14[i])
}

// Defined reports whether an indicator value exists (is not a warm-up NaN).
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
