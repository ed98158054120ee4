package collector

import (
	"context"
	"sync"
	"time"

	"QuantEngine/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols listed in Series return those bars; others get generated bars
// around Price, unless Price is zero, in which case they are unavailable.
type MockFetcher struct {
	Price  float64
	Series map[string][]model.OHLCV
	Errors map[string]error

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, symbol, lookback, _ string) (model.PriceSeries, error) {
	m.mu.Lock()
	m.calls = append(m.calls, symbol)
	m.mu.Unlock()

	series := model.PriceSeries{Symbol: symbol, FetchedAt: time.Now()}
	if err, ok := m.Errors[symbol]; ok {
		return series, err
	}
	if bars, ok := m.Series[symbol]; ok {
		series.Bars = bars
		return series, nil
	}
	if m.Price > 0 {
		series.Bars = generateMockBars(m.Price, tradingDays(lookback))
	}
	return series, nil
}

// Calls returns the symbols fetched so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
