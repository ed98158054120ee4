package calculator

import "QuantEngine/internal/model"

// Indicator periods used by the factor score.
const (
	ShortEMAPeriod = 20
	LongEMAPeriod  = 50
	RSIPeriod      = 14
	ATRPeriod      = 14
)

// Compute derives the indicator set for a price series.
func Compute(series model.PriceSeries) model.IndicatorSet {
	closes := series.Closes()
	return model.IndicatorSet{
		EMA20: EMA(closes, ShortEMAPeriod),
		EMA50: EMA(closes, LongEMAPeriod),
		RSI14: RSI(closes, RSIPeriod),
		ATR14: ATR(series.Highs(), series.Lows(), closes, ATRPeriod),
	}
}
