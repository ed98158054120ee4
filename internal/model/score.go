package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FactorBreakdown records which gates of the composite score passed and the
// readings they were evaluated on.
type FactorBreakdown struct {
	Trend      bool
	Momentum   bool
	Volatility bool
	Strength   bool

	EMA20     float64
	EMA50     float64
	RSI14     float64
	ATR14     float64
	ATRMean20 float64
	CloseMA50 float64
}

// ScoreRecord is the result of scoring one ticker in one evaluation cycle.
type ScoreRecord struct {
	Ticker    string
	Score     int
	LastPrice float64
	Breakdown FactorBreakdown
}

// Allocation is the equal-weight capital assigned to a selected ticker.
type Allocation struct {
	Ticker string
	Amount decimal.Decimal
}

// Cycle is one complete evaluation of the universe.
type Cycle struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Ranked      []ScoreRecord
	Selected    []ScoreRecord
	Allocations []Allocation
	PerPosition decimal.Decimal
	Skipped     map[string]string
	Err         error // set when nothing could be ranked
}

// FormatMoney rounds an amount to cents for display. Computation keeps full precision.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
