package calculator

import "math"

// RollingMean returns the mean of each trailing window of `period` values,
// current value included. Windows that are not yet full, or that contain an
// undefined value, are NaN.
func RollingMean(x []float64, period int) []float64 {
	out := nanSeries(len(x))
	if period <= 0 {
		return out
	}
	var sum float64
	var undefined int
	for i := range x {
		if math.IsNaN(x[i]) {
			undefined++
		} else {
			sum += x[i]
		}
		if i >= period {
			old := x[i-period]
			if math.IsNaN(old) {
				undefined--
			} else {
				sum -= old
			}
		}
		if i >= period-1 && undefined == 0 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
