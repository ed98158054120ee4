package portfolio

import "github.com/shopspring/decimal"

// State is the portfolio's capital and its append-only equity history.
// Capital always equals the last history element.
type State struct {
	Capital       decimal.Decimal   `json:"capital"`
	EquityHistory []decimal.Decimal `json:"equity_history"`
}

func newState(initial decimal.Decimal) State {
	return State{
		Capital:       initial,
		EquityHistory: []decimal.Decimal{initial},
	}
}

func (s State) clone() State {
	history := make([]decimal.Decimal, len(s.EquityHistory))
	copy(history, s.EquityHistory)
	return State{Capital: s.Capital, EquityHistory: history}
}

// EquityFloats converts the history for charting.
func (s State) EquityFloats() []float64 {
	out := make([]float64, len(s.EquityHistory))
	for i, v := range s.EquityHistory {
		out[i] = v.InexactFloat64()
	}
	return out
}
