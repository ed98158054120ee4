package calculator

// EMA computes the exponential moving average with smoothing 2/(period+1).
// The recursion starts at the first value; the first period-1 bars are NaN.
func EMA(x []float64, period int) []float64 {
	out := nanSeries(len(x))
	if period <= 0 || len(x) == 0 {
		return out
	}
	k := 2.0 / float64(period+1)
	prev := x[0]
	for i := range x {
		if i > 0 {
			prev = x[i]*k + prev*(1-k)
		}
		if i >= period-1 {
			out[i] = prev
		}
	}
	return out
}
