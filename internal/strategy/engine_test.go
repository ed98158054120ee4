package strategy

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var achievableScores = []int{0, 20, 25, 30, 45, 50, 55, 70, 75, 80, 100}

func TestScore_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 14, 49} {
		series := buildSeries("SHORT", linear(n, 100, 1), constRange(1))
		_, err := Score(series)
		require.Error(t, err, "length %d", n)
		assert.True(t, errors.Is(err, ErrInsufficientData), "length %d: %v", n, err)
	}
}

func TestScore_MinimumLengthIsScored(t *testing.T) {
	series := buildSeries("EXACT", linear(MinBars, 100, 1), constRange(1))
	_, err := Score(series)
	assert.NoError(t, err)
}

func TestScore_RisingTrendWithFlatVolatility(t *testing.T) {
	// Monotonic rise: RSI pins at 100 (outside band), ATR is constant so the
	// strict volatility gate fails on equality.
	rec, err := Evaluate(buildSeries("UP", linear(80, 100, 1), constRange(1)))
	require.NoError(t, err)

	assert.True(t, rec.Breakdown.Trend)
	assert.False(t, rec.Breakdown.Momentum)
	assert.False(t, rec.Breakdown.Volatility)
	assert.True(t, rec.Breakdown.Strength)
	assert.Equal(t, TrendPoints+StrengthPoints, rec.Score)
	assert.Equal(t, 179.0, rec.LastPrice)
	assert.Equal(t, "UP", rec.Ticker)
}

func TestScore_FallingSeriesScoresZero(t *testing.T) {
	score, err := Score(buildSeries("DOWN", linear(80, 200, -1), constRange(1)))
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestScore_AllGatesPass(t *testing.T) {
	n := 60
	// Wide ranges early, tight ranges for the last five bars: ATR contracts.
	series := buildSeries("ALL", zigzag(n), func(i int) float64 {
		if i >= n-5 {
			return 0.5
		}
		return 3
	})
	rec, err := Evaluate(series)
	require.NoError(t, err)

	b := rec.Breakdown
	assert.True(t, b.Trend, "ema20=%.3f ema50=%.3f", b.EMA20, b.EMA50)
	assert.True(t, b.Momentum, "rsi=%.2f", b.RSI14)
	assert.True(t, b.Volatility, "atr=%.3f mean=%.3f", b.ATR14, b.ATRMean20)
	assert.True(t, b.Strength, "close=%.2f ma50=%.2f", rec.LastPrice, b.CloseMA50)
	assert.Equal(t, 100, rec.Score)
}

func TestTotal_AchievableSet(t *testing.T) {
	seen := map[int]bool{}
	for mask := 0; mask < 16; mask++ {
		b := breakdownFromMask(mask)
		seen[Total(b)] = true
	}
	got := make([]int, 0, len(seen))
	for s := range seen {
		got = append(got, s)
	}
	sort.Ints(got)
	assert.Equal(t, achievableScores, got)
	assert.NotContains(t, got, 95)
}

func TestScore_AlwaysInAchievableSet(t *testing.T) {
	cases := [][]float64{
		linear(60, 50, 0.5),
		linear(60, 50, -0.5),
		zigzag(120),
		linear(55, 10, 0),
	}
	for i, closes := range cases {
		score, err := Score(buildSeries("X", closes, constRange(0.7)))
		require.NoError(t, err, "case %d", i)
		assert.Contains(t, achievableScores, score, "case %d", i)
	}
}

func TestGates_Boundaries(t *testing.T) {
	nan := math.NaN()

	assert.False(t, scoreTrend(10, 10))
	assert.True(t, scoreTrend(10.1, 10))
	assert.False(t, scoreTrend(nan, 10))

	assert.False(t, scoreMomentum(55))
	assert.True(t, scoreMomentum(55.01))
	assert.True(t, scoreMomentum(74.99))
	assert.False(t, scoreMomentum(75))
	assert.False(t, scoreMomentum(nan))

	assert.False(t, scoreVolatility(2, 2), "equal ATR earns nothing")
	assert.True(t, scoreVolatility(1.9, 2))
	assert.False(t, scoreVolatility(1, nan), "unfilled window earns nothing")

	assert.False(t, scoreStrength(100, 100))
	assert.True(t, scoreStrength(100.5, 100))
	assert.False(t, scoreStrength(100, nan))
}

func TestScore_UndefinedLastBarIsInsufficient(t *testing.T) {
	closes := linear(60, 100, 1)
	closes[len(closes)-1] = math.NaN()
	_, err := Evaluate(buildSeries("GAP", closes, constRange(1)))
	assert.ErrorIs(t, err, ErrInsufficientData)
}
