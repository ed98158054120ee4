// Package session holds the state of one running engine: the simulated
// portfolio and the most recent evaluation cycle.
package session

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"QuantEngine/internal/model"
	"QuantEngine/internal/portfolio"
)

// Direction selects a portfolio transition.
type Direction string

const (
	Gain Direction = "gain"
	Loss Direction = "loss"
)

var ErrInvalidMove = errors.New("invalid portfolio move")

// ParseDirection accepts "gain" or "loss" in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Gain, Loss:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidMove, s)
	}
}

// Session is owned by whoever creates it; nothing here is process-global.
type Session struct {
	ID        string
	StartedAt time.Time
	Portfolio *portfolio.Simulator

	topN int

	mu     sync.RWMutex
	latest *model.Cycle
}

// New creates a session starting from initial capital that selects topN
// tickers per cycle.
func New(initial decimal.Decimal, topN int) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Portfolio: portfolio.New(initial),
		topN:      topN,
	}
}

// TopN is the number of tickers selected per cycle.
func (s *Session) TopN() int { return s.topN }

// Publish makes c the latest cycle. Published cycles must not be mutated.
func (s *Session) Publish(c *model.Cycle) {
	s.mu.Lock()
	s.latest = c
	s.mu.Unlock()
}

// Latest returns the most recently published cycle, or nil before the first.
func (s *Session) Latest() *model.Cycle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Simulate applies one gain or loss of the given factor to the portfolio.
func (s *Session) Simulate(dir Direction, factor float64) (decimal.Decimal, error) {
	if math.IsNaN(factor) || factor < 0 || factor >= 1 {
		return decimal.Zero, fmt.Errorf("%w: factor %v outside [0, 1)", ErrInvalidMove, factor)
	}
	switch dir {
	case Gain:
		return s.Portfolio.ApplyGain(factor), nil
	case Loss:
		return s.Portfolio.ApplyLoss(factor), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown direction %q", ErrInvalidMove, dir)
	}
}

// Reset restarts the portfolio from its initial capital. The latest ranking
// is kept since it does not depend on the portfolio.
func (s *Session) Reset() {
	s.Portfolio.Reset()
}
