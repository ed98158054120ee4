package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantEngine/internal/model"
)

func TestRollingMean_WarmUpAndUndefinedWindows(t *testing.T) {
	x := []float64{math.NaN(), 2, 4, 6, 8}
	got := RollingMean(x, 2)

	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]), "window containing NaN must be undefined")
	assert.Equal(t, 3.0, got[2])
	assert.Equal(t, 5.0, got[3])
	assert.Equal(t, 7.0, got[4])
}

func TestEMA_Warmup(t *testing.T) {
	x := []float64{10, 10, 10, 10, 20}
	got := EMA(x, 3)

	require.Len(t, got, len(x))
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.Equal(t, 10.0, got[2])
	assert.Equal(t, 10.0, got[3])
	assert.InDelta(t, 15.0, got[4], 1e-9) // k = 0.5
}

func TestRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	got := RSI(rising, 14)
	for i := 0; i < 13; i++ {
		assert.True(t, math.IsNaN(got[i]), "bar %d should be warm-up", i)
	}
	assert.Equal(t, 100.0, got[13])
	assert.Equal(t, 100.0, got[19])

	alternating := []float64{10, 11, 10, 11, 10}
	got = RSI(alternating, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 100.0, got[1])
	assert.InDelta(t, 100.0/3, got[2], 1e-9)
	assert.InDelta(t, 500.0/7, got[3], 1e-9)

	assert.True(t, math.IsNaN(RSI([]float64{1, 2}, 14)[1]))
}

func TestRSI_RecursiveAverage(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   []float64
	}{
		{
			name:   "mixed moves",
			closes: []float64{10, 12, 11, 13},
			period: 3,
			want:   []float64{math.NaN(), math.NaN(), 400.0 / 7, 81.25},
		},
		{
			name:   "falling",
			closes: []float64{5, 4, 3, 2},
			period: 2,
			want:   []float64{math.NaN(), 0, 0, 0},
		},
		{
			name:   "flat",
			closes: []float64{7, 7, 7},
			period: 2,
			want:   []float64{math.NaN(), 100, 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.closes, tt.period)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				if math.IsNaN(w) {
					assert.True(t, math.IsNaN(got[i]), "bar %d", i)
					continue
				}
				assert.InDelta(t, w, got[i], 1e-9, "bar %d", i)
			}
		})
	}
}

func TestATR(t *testing.T) {
	high := []float64{11, 12, 13, 14}
	low := []float64{9, 10, 11, 12}
	closes := []float64{10, 11, 12, 13}

	tr := TrueRange(high, low, closes)
	assert.Equal(t, []float64{2, 2, 2, 2}, tr)

	got := ATR(high, low, closes, 2)
	assert.True(t, math.IsNaN(got[0]))
	assert.Equal(t, 2.0, got[1])
	assert.Equal(t, 2.0, got[3])

	// Gap up: |high - prevClose| dominates.
	tr = TrueRange([]float64{10, 20}, []float64{9, 19}, []float64{9.5, 19.5})
	assert.Equal(t, 10.5, tr[1])
}

func TestCompute_AlignedWithSeries(t *testing.T) {
	bars := make([]model.OHLCV, 60)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		p := 100 + float64(i)
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: p, High: p + 1, Low: p - 1, Close: p}
	}
	set := Compute(model.PriceSeries{Symbol: "TEST", Bars: bars})

	assert.Equal(t, 60, set.Len())
	assert.Len(t, set.ATR14, 60)
	assert.False(t, set.Ready(48), "EMA50 is still warming up")
	assert.True(t, set.Ready(49))
	assert.True(t, set.EMA20[59] > set.EMA50[59])
}
