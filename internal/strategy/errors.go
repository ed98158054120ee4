package strategy

import "errors"

var (
	// ErrInsufficientData means a series is shorter than the longest indicator
	// window. Callers skip the ticker rather than score undefined indicators.
	ErrInsufficientData = errors.New("insufficient data for scoring")
	// ErrDivision means allocation was requested over an empty selection.
	ErrDivision = errors.New("cannot allocate across zero positions")
	// ErrEmptyUniverse means no ticker produced a valid score.
	ErrEmptyUniverse = errors.New("no ticker produced a valid score")
)
