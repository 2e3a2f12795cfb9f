package indicators

// Snapshot bundles every indicator computed over one price window. It is
// recomputed fresh per scoring call and never persisted.
type Snapshot struct {
	RSI        float64
	MACD       MACD
	EMA20      float64
	EMA50      float64
	Bands      Bands
	Stoch      Stochastic
	Volatility float64
	Trend      Trend
}

// TakeSnapshot computes the full indicator set for a price window.
func TakeSnapshot(prices []float64) Snapshot {
	s := Snapshot{
		RSI:        RSI(prices, 14),
		MACD:       MACDOf(prices),
		EMA20:      EMA(prices, 20),
		EMA50:      EMA(prices, 50),
		Bands:      Bollinger(prices, 20, 2),
		Stoch:      Stoch(prices, 14),
		Volatility: RangeVolatility(prices),
	}
	s.Trend = trendOf(prices, s)
	return s
}

// trendOf tags the window by majority vote over five sub-signals. Three or
// more bullish votes give BULLISH, three or more bearish votes BEARISH,
// anything else NEUTRAL.
func trendOf(prices []float64, s Snapshot) Trend {
	if len(prices) == 0 {
		return Neutral
	}
	last := prices[len(prices)-1]

	bull := 0
	if s.EMA20 > s.EMA50 {
		bull++
	}
	if s.MACD.Histogram > 0 {
		bull++
	}
	if s.RSI > 50 && s.RSI < 70 {
		bull++
	}
	if last > s.Bands.Middle {
		bull++
	}
	if s.Stoch.K > s.Stoch.D {
		bull++
	}

	bear := 0
	if s.EMA20 < s.EMA50 {
		bear++
	}
	if s.MACD.Histogram < 0 {
		bear++
	}
	if s.RSI > 30 && s.RSI < 50 {
		bear++
	}
	if last < s.Bands.Middle {
		bear++
	}
	if s.Stoch.K < s.Stoch.D {
		bear++
	}

	switch {
	case bull >= 3:
		return Bullish
	case bear >= 3:
		return Bearish
	}
	return Neutral
}
