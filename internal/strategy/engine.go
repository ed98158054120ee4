package strategy

import (
	"fmt"

	"QuantEngine/internal/calculator"
	"QuantEngine/internal/model"
)

// MinBars is the length of the longest indicator window (EMA50, 50-bar close mean).
const MinBars = calculator.LongEMAPeriod

// Evaluate scores a series and returns the full record for its ticker.
func Evaluate(series model.PriceSeries) (model.ScoreRecord, error) {
	if series.Len() < MinBars {
		return model.ScoreRecord{}, fmt.Errorf("%s: %w: got %d bars, need %d",
			series.Symbol, ErrInsufficientData, series.Len(), MinBars)
	}

	ind := calculator.Compute(series)
	if last := series.Len() - 1; !ind.Ready(last) {
		return model.ScoreRecord{}, fmt.Errorf("%s: %w: indicators undefined on the last bar",
			series.Symbol, ErrInsufficientData)
	}
	b := breakdown(series, ind)
	return model.ScoreRecord{
		Ticker:    series.Symbol,
		Score:     Total(b),
		LastPrice: series.Last().Close,
		Breakdown: b,
	}, nil
}

// Score returns the composite factor score in [0,100].
func Score(series model.PriceSeries) (int, error) {
	rec, err := Evaluate(series)
	if err != nil {
		return 0, err
	}
	return rec.Score, nil
}
