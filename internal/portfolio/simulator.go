package portfolio

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"QuantEngine/internal/risk"
)

// Simulator owns a session's PortfolioState. Transitions are serialized
// against each other and against reads, so Analyze never observes a history
// that is mutated mid-read.
type Simulator struct {
	mu      sync.RWMutex
	initial decimal.Decimal
	state   State
}

// New creates a simulator whose history starts at the initial capital.
func New(initial decimal.Decimal) *Simulator {
	return &Simulator{
		initial: initial,
		state:   newState(initial),
	}
}

// ApplyGain grows capital by factor and appends it to the equity history.
func (s *Simulator) ApplyGain(factor float64) decimal.Decimal {
	return s.apply(decimal.NewFromInt(1).Add(decimal.NewFromFloat(factor)), "gain", factor)
}

// ApplyLoss shrinks capital by factor and appends it to the equity history.
func (s *Simulator) ApplyLoss(factor float64) decimal.Decimal {
	return s.apply(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(factor)), "loss", factor)
}

func (s *Simulator) apply(multiplier decimal.Decimal, kind string, factor float64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Capital = s.state.Capital.Mul(multiplier)
	s.state.EquityHistory = append(s.state.EquityHistory, s.state.Capital)

	log.Debug().
		Str("event", kind).
		Float64("factor", factor).
		Str("capital", s.state.Capital.String()).
		Int("points", len(s.state.EquityHistory)).
		Msg("portfolio transition applied")
	return s.state.Capital
}

// Capital returns the current capital.
func (s *Simulator) Capital() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Capital
}

// History returns a copy of the equity history.
func (s *Simulator) History() []decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone().EquityHistory
}

// State returns a copy of the current portfolio state.
func (s *Simulator) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Analyze computes risk metrics over a consistent view of the history.
// ok is false while fewer than two equity points exist.
func (s *Simulator) Analyze() (snap risk.Snapshot, ok bool) {
	return risk.Analyze(s.History())
}

// Reset discards the session's history and restarts from the initial capital.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = newState(s.initial)
	log.Info().Str("capital", s.initial.String()).Msg("portfolio reset")
}
