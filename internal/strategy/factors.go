package strategy

import (
	"QuantEngine/internal/calculator"
	"QuantEngine/internal/model"
)

// Gate weights of the composite score.
const (
	TrendPoints      = 30
	MomentumPoints   = 25
	VolatilityPoints = 20
	StrengthPoints   = 25
)

// RSI band of the momentum gate, both bounds exclusive.
const (
	MomentumRSILow  = 55.0
	MomentumRSIHigh = 75.0
)

// Rolling windows used by the volatility and price strength gates.
const (
	ATRMeanWindow   = 20
	CloseMeanWindow = 50
)

// scoreTrend awards points when the short EMA is above the long EMA.
func scoreTrend(ema20, ema50 float64) bool {
	if !model.Defined(ema20) || !model.Defined(ema50) {
		return false
	}
	return ema20 > ema50
}

// scoreMomentum awards points inside the bullish but not overbought RSI band.
func scoreMomentum(rsi float64) bool {
	if !model.Defined(rsi) {
		return false
	}
	return rsi > MomentumRSILow && rsi < MomentumRSIHigh
}

// scoreVolatility awards points when ATR is contracting below its recent mean.
// An unfilled window or an exactly equal reading earns nothing.
func scoreVolatility(atr, atrMean float64) bool {
	if !model.Defined(atr) || !model.Defined(atrMean) {
		return false
	}
	return atr < atrMean
}

// scoreStrength awards points when the close is above its 50-bar mean.
func scoreStrength(close, closeMean float64) bool {
	if !model.Defined(close) || !model.Defined(closeMean) {
		return false
	}
	return close > closeMean
}

// breakdown evaluates all four gates on the most recent bar.
func breakdown(series model.PriceSeries, ind model.IndicatorSet) model.FactorBreakdown {
	last := series.Len() - 1
	closes := series.Closes()
	atrMean := calculator.RollingMean(ind.ATR14, ATRMeanWindow)[last]
	closeMean := calculator.RollingMean(closes, CloseMeanWindow)[last]

	return model.FactorBreakdown{
		Trend:      scoreTrend(ind.EMA20[last], ind.EMA50[last]),
		Momentum:   scoreMomentum(ind.RSI14[last]),
		Volatility: scoreVolatility(ind.ATR14[last], atrMean),
		Strength:   scoreStrength(closes[last], closeMean),
		EMA20:      ind.EMA20[last],
		EMA50:      ind.EMA50[last],
		RSI14:      ind.RSI14[last],
		ATR14:      ind.ATR14[last],
		ATRMean20:  atrMean,
		CloseMA50:  closeMean,
	}
}

// Total sums the points of the gates that passed.
func Total(b model.FactorBreakdown) int {
	score := 0
	if b.Trend {
		score += TrendPoints
	}
	if b.Momentum {
		score += MomentumPoints
	}
	if b.Volatility {
		score += VolatilityPoints
	}
	if b.Strength {
		score += StrengthPoints
	}
	return score
}
