package strategy

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"QuantEngine/internal/model"
)

// Rank orders records by score, highest first. Equal scores keep their input
// order, so the result is deterministic for a given universe order.
func Rank(records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	if len(records) == 0 {
		return nil, ErrEmptyUniverse
	}
	ranked := make([]model.ScoreRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// SelectTop returns the first n ranked records, or all of them when fewer exist.
func SelectTop(ranked []model.ScoreRecord, n int) []model.ScoreRecord {
	if n <= 0 {
		return []model.ScoreRecord{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]model.ScoreRecord, n)
	copy(out, ranked[:n])
	return out
}

// Allocate splits capital equally across n positions at full precision.
// Rounding to cents happens only when displaying (model.FormatMoney).
func Allocate(capital decimal.Decimal, n int) (decimal.Decimal, error) {
	if n <= 0 {
		return decimal.Zero, fmt.Errorf("%w: n=%d", ErrDivision, n)
	}
	return capital.Div(decimal.NewFromInt(int64(n))), nil
}

// BuildAllocations assigns the equal-weight amount to every selected ticker.
func BuildAllocations(selected []model.ScoreRecord, capital decimal.Decimal) ([]model.Allocation, decimal.Decimal, error) {
	per, err := Allocate(capital, len(selected))
	if err != nil {
		return nil, decimal.Zero, err
	}
	out := make([]model.Allocation, len(selected))
	for i, rec := range selected {
		out[i] = model.Allocation{Ticker: rec.Ticker, Amount: per}
	}
	return out, per, nil
}
