package signal

import (
	"fmt"

	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/pattern"
)

// scoreParity trades the even/odd family on digit mean reversion. Layers in
// priority order: even-share reversion, parity streak reversal, even/odd
// ratio bias. No layer matching means no trade.
func (s *Scorer) scoreParity(digits []int) (decision, bool) {
	if len(digits) < s.policy.MinParitySamples {
		return decision{}, false
	}

	even := 0
	for _, d := range digits {
		if d%2 == 0 {
			even++
		}
	}
	share := float64(even) / float64(len(digits))

	// Layer 1: mean reversion on the even share, boosted when the recent
	// window confirms the skew.
	if share > s.policy.EvenShareHigh {
		conf := 70 + (share-s.policy.EvenShareHigh)*200
		if recentEvenShare(digits, 10) > 0.6 {
			conf += 5
		}
		return decision{
			contract:   market.DigitOdd,
			confidence: conf,
			reason:     fmt.Sprintf("even share %.0f%% reverting to odd", share*100),
		}, true
	}
	if share < s.policy.EvenShareLow {
		conf := 70 + (s.policy.EvenShareLow-share)*200
		if recentEvenShare(digits, 10) < 0.4 {
			conf += 5
		}
		return decision{
			contract:   market.DigitEven,
			confidence: conf,
			reason:     fmt.Sprintf("even share %.0f%% reverting to even", share*100),
		}, true
	}

	// Layer 2: a long same-parity streak reverses.
	if n, isEven := pattern.ParityStreak(digits); n >= s.policy.ParityStreakMin {
		contract := market.DigitOdd
		if !isEven {
			contract = market.DigitEven
		}
		return decision{
			contract:   contract,
			confidence: 72 + float64(n-s.policy.ParityStreakMin)*2,
			reason:     fmt.Sprintf("parity streak of %d reversing", n),
		}, true
	}

	// Layer 3: short-horizon ratio bias. The trailing 20 digits can run hot
	// while the full window still sits inside the layer-1 band.
	if recent := recentEvenShare(digits, 20); recent > s.policy.EvenRatioHigh {
		return decision{
			contract:   market.DigitOdd,
			confidence: 75,
			reason:     fmt.Sprintf("recent even ratio %.2f biased", recent),
		}, true
	} else if recent < s.policy.EvenRatioLow {
		return decision{
			contract:   market.DigitEven,
			confidence: 75,
			reason:     fmt.Sprintf("recent even ratio %.2f biased", recent),
		}, true
	}

	return decision{}, false
}

// recentEvenShare is the even share over the trailing n digits.
func recentEvenShare(digits []int, n int) float64 {
	if n > len(digits) {
		n = len(digits)
	}
	if n == 0 {
		return 0.5
	}
	even := 0
	for _, d := range digits[len(digits)-n:] {
		if d%2 == 0 {
			even++
		}
	}
	return float64(even) / float64(n)
}
