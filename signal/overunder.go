package signal

import (
	"fmt"

	"github.com/rustyeddy/tickbot/indicators"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/pattern"
)

// scoreOverUnder trades the barrier family. Six layers in priority order:
// recent imbalance reversion, side-streak reversal, overall-vs-recent
// alignment, momentum alignment, due-digit side, cold digits beyond the
// barrier. The first satisfied layer sets side and confidence.
func (s *Scorer) scoreOverUnder(prices []float64, digits []int, snap indicators.Snapshot, barrier int) (decision, bool) {
	if len(digits) < s.policy.MinBarrierSamples || barrier < 0 || barrier > 9 {
		return decision{}, false
	}

	// Share of digits strictly over the barrier; digits equal to the
	// barrier sit on neither side.
	expectedOver := float64(9-barrier) / 10
	recent := lastN(digits, 20)
	recentOver := overShare(recent, barrier)
	overallOver := overShare(digits, barrier)

	// Layer 1: strong recent imbalance mean-reverts, with a volatility
	// haircut on choppy windows.
	if dev := recentOver - expectedOver; dev >= s.policy.RecentImbalance || dev <= -s.policy.RecentImbalance {
		contract := market.DigitUnder
		if dev < 0 {
			contract = market.DigitOver
			dev = -dev
		}
		conf := 70 + dev*40
		if pattern.ReturnVolatility(prices) > s.policy.VolatilityLimit {
			conf -= s.policy.VolatilityPenalty
		}
		return decision{
			contract:   contract,
			confidence: conf,
			reason:     fmt.Sprintf("recent over-share %.0f%% vs expected %.0f%%", recentOver*100, expectedOver*100),
		}, true
	}

	// Layer 2: a long same-side run reverses.
	if n, over := pattern.SideStreak(digits, barrier); n >= s.policy.SideStreakMin {
		contract := market.DigitUnder
		if !over {
			contract = market.DigitOver
		}
		return decision{
			contract:   contract,
			confidence: 74,
			reason:     fmt.Sprintf("side streak of %d reversing", n),
		}, true
	}

	// Layer 3: overall and recent windows leaning the same way is followed.
	overallDev := overallOver - expectedOver
	recentDev := recentOver - expectedOver
	if overallDev >= s.policy.OverallImbalance && recentDev > 0 {
		return decision{
			contract:   market.DigitOver,
			confidence: 72,
			reason:     "overall and recent windows lean over",
		}, true
	}
	if overallDev <= -s.policy.OverallImbalance && recentDev < 0 {
		return decision{
			contract:   market.DigitUnder,
			confidence: 72,
			reason:     "overall and recent windows lean under",
		}, true
	}

	// Layer 4: price momentum and oscillator agreeing on a direction.
	if snap.Trend == indicators.Bullish && snap.RSI > 55 {
		return decision{
			contract:   market.DigitOver,
			confidence: 70,
			reason:     "bullish momentum alignment",
		}, true
	}
	if snap.Trend == indicators.Bearish && snap.RSI < 45 {
		return decision{
			contract:   market.DigitUnder,
			confidence: 70,
			reason:     "bearish momentum alignment",
		}, true
	}

	// Layer 5: the due digit lying strictly on one side of the barrier.
	stats := pattern.AnalyzeDigits(digits)
	if stats.Due != nil && stats.Due.Digit != barrier {
		contract := market.DigitUnder
		if stats.Due.Digit > barrier {
			contract = market.DigitOver
		}
		return decision{
			contract:   contract,
			confidence: stats.Due.Confidence,
			reason:     fmt.Sprintf("digit %d due", stats.Due.Digit),
		}, true
	}

	// Layer 6: two or more cold digits beyond the barrier that the recent
	// window has not printed at all.
	coldOver := 0
	for _, d := range stats.Cold {
		if d > barrier && countOf(recent, d) == 0 {
			coldOver++
		}
	}
	if coldOver >= 2 {
		return decision{
			contract:   market.DigitOver,
			confidence: 70,
			reason:     fmt.Sprintf("%d cold digits above barrier under-represented", coldOver),
		}, true
	}

	return decision{}, false
}

func lastN(digits []int, n int) []int {
	if n > len(digits) {
		n = len(digits)
	}
	return digits[len(digits)-n:]
}

func overShare(digits []int, barrier int) float64 {
	if len(digits) == 0 {
		return 0
	}
	over := 0
	for _, d := range digits {
		if d > barrier {
			over++
		}
	}
	return float64(over) / float64(len(digits))
}

func countOf(digits []int, target int) int {
	n := 0
	for _, d := range digits {
		if d == target {
			n++
		}
	}
	return n
}
