package calculator

// RSI computes the relative strength index of closes. Gains and losses are
// averaged recursively with alpha 1/period, seeded at bar 0 where the change
// counts as zero, so the first value is at index period-1.
func RSI(closes []float64, period int) []float64 {
	out := nanSeries(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain += alpha * (gain - avgGain)
		avgLoss += alpha * (loss - avgLoss)
		if i >= period-1 {
			out[i] = rsiValue(avgGain, avgLoss)
		}
	}
	if period == 1 {
		out[0] = rsiValue(0, 0)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
