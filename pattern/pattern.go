// Package pattern derives statistics over a price/digit window: support and
// resistance estimates, return volatility, trend-streak classification and
// digit frequency analysis for the digit contract families.
package pattern

import (
	"math"
	"sort"
)

// Levels is the support/resistance estimate for a window.
type Levels struct {
	Support    float64
	Resistance float64
}

// LevelsOf estimates support and resistance as the 20th and 80th percentile
// of the trailing 50 prices.
func LevelsOf(prices []float64) Levels {
	if len(prices) == 0 {
		return Levels{}
	}
	if len(prices) > 50 {
		prices = prices[len(prices)-50:]
	}

	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	return Levels{
		Support:    sorted[len(sorted)*20/100],
		Resistance: sorted[len(sorted)*80/100],
	}
}

// ReturnVolatility is the standard deviation of consecutive percentage
// returns over the window. Zero with fewer than two samples.
func ReturnVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(returns)))
}

// TrendClass is the streak classification tag.
type TrendClass string

const (
	StrongUptrend   TrendClass = "STRONG_UPTREND"
	StrongDowntrend TrendClass = "STRONG_DOWNTREND"
	Ranging         TrendClass = "RANGING"
)

// Classification is a streak tag with its strength score in [50,85].
type Classification struct {
	Class    TrendClass
	Strength float64
}

// Classify partitions the trailing 20 samples into 4-sample blocks and counts
// successive blocks with strictly higher (or lower) local highs and lows.
// Three or more higher-high blocks with two or more higher-low blocks makes a
// strong uptrend, symmetric for a downtrend, anything else is ranging.
func Classify(prices []float64) Classification {
	if len(prices) < 20 {
		return Classification{Class: Ranging, Strength: 50}
	}
	window := prices[len(prices)-20:]

	type block struct{ high, low float64 }
	blocks := make([]block, 0, 5)
	for i := 0; i+4 <= len(window); i += 4 {
		b := block{high: window[i], low: window[i]}
		for _, p := range window[i : i+4] {
			if p > b.high {
				b.high = p
			}
			if p < b.low {
				b.low = p
			}
		}
		blocks = append(blocks, b)
	}

	var higherHighs, higherLows, lowerHighs, lowerLows int
	for i := 1; i < len(blocks); i++ {
		if blocks[i].high > blocks[i-1].high {
			higherHighs++
		}
		if blocks[i].low > blocks[i-1].low {
			higherLows++
		}
		if blocks[i].high < blocks[i-1].high {
			lowerHighs++
		}
		if blocks[i].low < blocks[i-1].low {
			lowerLows++
		}
	}

	switch {
	case higherHighs >= 3 && higherLows >= 2:
		return Classification{Class: StrongUptrend, Strength: 85}
	case lowerHighs >= 3 && lowerLows >= 2:
		return Classification{Class: StrongDowntrend, Strength: 85}
	}
	return Classification{Class: Ranging, Strength: 50}
}
