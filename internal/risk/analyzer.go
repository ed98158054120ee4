// Package risk derives return-based risk metrics from an equity curve.
// All functions are pure; callers pass a snapshot of the history.
package risk

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// TradingDaysPerYear annualizes per-step Sharpe ratios.
const TradingDaysPerYear = 252

// Snapshot holds the risk metrics of one equity history.
type Snapshot struct {
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"` // fraction, <= 0
	Returns     int     `json:"returns"`
}

// Analyze computes the snapshot. ok is false when the history holds fewer than
// two points: there are no returns yet, which is not the same as zero risk.
func Analyze(equity []decimal.Decimal) (snap Snapshot, ok bool) {
	returns := Returns(equity)
	if len(returns) == 0 {
		return Snapshot{}, false
	}
	return Snapshot{
		Sharpe:      Sharpe(returns),
		MaxDrawdown: MaxDrawdown(equity),
		Returns:     len(returns),
	}, true
}

// Returns computes simple per-step returns equity[i]/equity[i-1] - 1.
func Returns(equity []decimal.Decimal) []float64 {
	if len(equity) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1]
		if prev.IsZero() {
			out = append(out, 0)
			continue
		}
		r := equity[i].Div(prev).Sub(decimal.NewFromInt(1))
		out = append(out, r.InexactFloat64())
	}
	return out
}

// Sharpe returns sqrt(252) * mean / sample standard deviation (n-1 divisor).
// It is 0 when the deviation is zero or undefined (a single return).
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil || stdev == 0 || math.IsNaN(stdev) {
		return 0
	}
	return math.Sqrt(TradingDaysPerYear) * mean / stdev
}

// MaxDrawdown returns the deepest decline from a running peak as a fraction
// (<= 0). Zero means equity never fell below a previous high.
func MaxDrawdown(equity []decimal.Decimal) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	worst := 0.0
	for _, v := range equity {
		if v.GreaterThan(peak) {
			peak = v
		}
		if peak.IsZero() {
			continue
		}
		dd := v.Div(peak).Sub(decimal.NewFromInt(1)).InexactFloat64()
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
