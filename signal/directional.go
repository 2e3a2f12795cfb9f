package signal

import (
	"fmt"

	"github.com/rustyeddy/tickbot/indicators"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/pattern"
)

// Composite weights for the directional base score. They sum to 1.
const (
	wRSI   = 0.20
	wMACD  = 0.20
	wCross = 0.20
	wBands = 0.15
	wStoch = 0.15
	wTrend = 0.10
)

// scoreDirectional scores the rise and fall hypotheses separately from a
// weighted indicator composite, applies the pattern/level/volatility/
// alignment adjustments, and trades the stronger side only if it clears the
// entry threshold.
func (s *Scorer) scoreDirectional(prices []float64, snap indicators.Snapshot) (decision, bool) {
	if len(prices) < 20 {
		return decision{}, false
	}
	last := prices[len(prices)-1]

	up := wRSI*rsiScore(snap.RSI, true) +
		wMACD*macdScore(snap.MACD, true) +
		wCross*crossScore(snap, true) +
		wBands*bandScore(last, snap.Bands, true) +
		wStoch*stochScore(snap.Stoch, true) +
		wTrend*trendScore(snap.Trend, true)

	down := wRSI*rsiScore(snap.RSI, false) +
		wMACD*macdScore(snap.MACD, false) +
		wCross*crossScore(snap, false) +
		wBands*bandScore(last, snap.Bands, false) +
		wStoch*stochScore(snap.Stoch, false) +
		wTrend*trendScore(snap.Trend, false)

	// Pattern bonus: a strong streak pushes its own side up and the other
	// side down by a share of the pattern strength.
	cls := pattern.Classify(prices)
	switch cls.Class {
	case pattern.StrongUptrend:
		up += s.policy.PatternWeight * cls.Strength
		down -= s.policy.PatternWeight * cls.Strength
	case pattern.StrongDowntrend:
		down += s.policy.PatternWeight * cls.Strength
		up -= s.policy.PatternWeight * cls.Strength
	}

	// Support/resistance plus momentum: oversold near support favours a
	// bounce, overbought near resistance favours a rejection.
	lv := pattern.LevelsOf(prices)
	span := lv.Resistance - lv.Support
	if span > 0 {
		if last <= lv.Support+span*0.1 && snap.RSI < 40 {
			up += s.policy.LevelBonus
			down -= s.policy.LevelBonus
		}
		if last >= lv.Resistance-span*0.1 && snap.RSI > 60 {
			down += s.policy.LevelBonus
			up -= s.policy.LevelBonus
		}
	}

	// Volatility: choppy windows are penalised, calm ones slightly favoured.
	if pattern.ReturnVolatility(prices) > s.policy.VolatilityLimit {
		up -= s.policy.VolatilityPenalty
		down -= s.policy.VolatilityPenalty
	} else {
		up += s.policy.CalmBonus
		down += s.policy.CalmBonus
	}

	// Short/medium horizon alignment.
	short := indicators.SMA(prices, 5)
	medium := indicators.SMA(prices, 20)
	switch {
	case short > medium:
		up += s.policy.AlignBonus
		down -= s.policy.AlignBonus
	case short < medium:
		down += s.policy.AlignBonus
		up -= s.policy.AlignBonus
	}

	contract, conf := market.Call, up
	if down > up {
		contract, conf = market.Put, down
	}
	if conf < s.policy.EntryThreshold {
		return decision{}, false
	}

	return decision{
		contract:   contract,
		confidence: conf,
		reason:     fmt.Sprintf("directional composite %.1f (up %.1f / down %.1f)", conf, up, down),
	}, true
}

// rsiScore rewards momentum inside the actionable band and discounts the
// overbought/oversold extremes where reversal risk dominates.
func rsiScore(rsi float64, up bool) float64 {
	if up {
		switch {
		case rsi > 50 && rsi < 70:
			return 100
		case rsi >= 70:
			return 30
		}
		return 0
	}
	switch {
	case rsi > 30 && rsi < 50:
		return 100
	case rsi <= 30:
		return 30
	}
	return 0
}

func macdScore(m indicators.MACD, up bool) float64 {
	if up == (m.Value > 0) && m.Value != 0 {
		return 100
	}
	return 0
}

func crossScore(snap indicators.Snapshot, up bool) float64 {
	if up == (snap.EMA20 > snap.EMA50) && snap.EMA20 != snap.EMA50 {
		return 100
	}
	return 0
}

// bandScore scales with the price's position between the middle band and the
// outer band on the hypothesis side.
func bandScore(last float64, b indicators.Bands, up bool) float64 {
	if up {
		if last <= b.Middle || b.Upper == b.Middle {
			return 0
		}
		return clamp((last-b.Middle)/(b.Upper-b.Middle)*100, 0, 100)
	}
	if last >= b.Middle || b.Middle == b.Lower {
		return 0
	}
	return clamp((b.Middle-last)/(b.Middle-b.Lower)*100, 0, 100)
}

func stochScore(st indicators.Stochastic, up bool) float64 {
	if up == (st.K > st.D) && st.K != st.D {
		return 100
	}
	return 0
}

func trendScore(tr indicators.Trend, up bool) float64 {
	switch tr {
	case indicators.Bullish:
		if up {
			return 100
		}
		return 0
	case indicators.Bearish:
		if up {
			return 0
		}
		return 100
	}
	return 50
}
