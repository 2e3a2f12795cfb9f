// Package indicators provides technical analysis indicators computed as pure
// functions over a price window snapshot.
//
// All functions are deterministic and total: numerically degenerate inputs
// (short history, zero range, zero variance) fall back to documented neutral
// values instead of producing NaN.
package indicators

import "math"

// Trend is the coarse direction tag derived from the sub-signal vote.
type Trend string

const (
	Bullish Trend = "BULLISH"
	Bearish Trend = "BEARISH"
	Neutral Trend = "NEUTRAL"
)

// RSI computes the relative strength oscillator over the trailing period.
// Returns 50 with insufficient history and 100 when the loss average is zero.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	for i := len(prices) - period; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// SMA is the simple average of the trailing period. Returns the mean of the
// whole slice when history is shorter than period, and 0 when empty.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period > len(prices) {
		period = len(prices)
	}

	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA computes an exponential average seeded by the simple average of the
// first period samples, then the usual 2/(period+1) recurrence. With fewer
// than period samples it degrades to the simple average.
func EMA(prices []float64, period int) float64 {
	if len(prices) < period {
		return SMA(prices, period)
	}

	ema := SMA(prices[:period], period)
	k := 2.0 / float64(period+1)
	for _, p := range prices[period:] {
		ema = p*k + ema*(1-k)
	}
	return ema
}

// MACD is the moving-average convergence measure. No independent smoothing
// history is retained for the signal line, so it degenerates to the MACD
// value itself and the histogram to zero.
type MACD struct {
	Value     float64
	Signal    float64
	Histogram float64
}

// MACDOf computes the convergence measure from 12/26 exponential averages.
func MACDOf(prices []float64) MACD {
	v := EMA(prices, 12) - EMA(prices, 26)
	return MACD{Value: v, Signal: v, Histogram: 0}
}

// Bands is a banded volatility envelope around the trailing mean.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger computes mean ± k·stddev over the trailing period. With short
// history all three bands repeat the last price.
func Bollinger(prices []float64, period int, k float64) Bands {
	if len(prices) < period {
		last := 0.0
		if len(prices) > 0 {
			last = prices[len(prices)-1]
		}
		return Bands{Upper: last, Middle: last, Lower: last}
	}

	window := prices[len(prices)-period:]
	mean := SMA(window, period)

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  mean + k*sd,
		Middle: mean,
		Lower:  mean - k*sd,
	}
}

// Stochastic is the position of the current price within the trailing
// high-low range, expressed 0-100.
type Stochastic struct {
	K float64
	D float64
}

// Stoch computes the stochastic oscillator over the trailing period. %K is 50
// when the range is zero or history is short; %D smooths %K over the last
// three window positions.
func Stoch(prices []float64, period int) Stochastic {
	k := stochK(prices, period)

	// %D: average of %K at the last three window positions.
	dSum, dN := 0.0, 0
	for off := 0; off < 3 && len(prices)-off >= period; off++ {
		dSum += stochK(prices[:len(prices)-off], period)
		dN++
	}
	d := k
	if dN > 0 {
		d = dSum / float64(dN)
	}

	return Stochastic{K: k, D: d}
}

func stochK(prices []float64, period int) float64 {
	if len(prices) < period {
		return 50
	}

	window := prices[len(prices)-period:]
	lo, hi := window[0], window[0]
	for _, p := range window {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi == lo {
		return 50
	}
	return (window[len(window)-1] - lo) / (hi - lo) * 100
}

// RangeVolatility is the absolute difference between the last two samples, a
// coarse single-step proxy for range, not a true multi-period average.
func RangeVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return math.Abs(prices[len(prices)-1] - prices[len(prices)-2])
}
