package signal

import (
	"fmt"

	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/pattern"
)

// scoreMatchDiff trades the exact-digit family against the configured target
// digit. The requested side is kept: match only trades when the target looks
// live, differ trades whenever the target looks stretched or merely ordinary
// (the contract's inherent win probability carries the baseline).
func (s *Scorer) scoreMatchDiff(digits []int, contract market.ContractType, target int) (decision, bool) {
	if target < 0 || target > 9 {
		return decision{}, false
	}
	if contract == market.DigitMatch {
		return s.scoreMatch(digits, target)
	}
	return s.scoreDiffer(digits, target)
}

func (s *Scorer) scoreMatch(digits []int, target int) (decision, bool) {
	if len(digits) < s.policy.MinMatchSamples {
		return decision{}, false
	}

	stats := pattern.AnalyzeDigits(digits)
	recent10 := countOf(lastN(digits, 10), target)

	// Hot with recent confirming appearances.
	if contains(stats.Hot, target) && recent10 >= 2 {
		conf := 55 + float64(recent10)*5
		if conf > 75 {
			conf = 75
		}
		return decision{
			contract:   market.DigitMatch,
			confidence: conf,
			reason:     fmt.Sprintf("digit %d hot with %d recent hits", target, recent10),
		}, true
	}

	// On an active streak.
	if pattern.DigitStreak(digits, target) >= 2 {
		return decision{
			contract:   market.DigitMatch,
			confidence: 70,
			reason:     fmt.Sprintf("digit %d on a streak", target),
		}, true
	}

	// The single hottest digit.
	if stats.Hottest == target && stats.Counts[target] > 0 && soleHottest(stats) {
		return decision{
			contract:   market.DigitMatch,
			confidence: 68,
			reason:     fmt.Sprintf("digit %d is the hottest", target),
		}, true
	}

	// Markedly overdue: absent from the trailing 25 and cold overall.
	if countOf(lastN(digits, 25), target) == 0 && contains(stats.Cold, target) {
		return decision{
			contract:   market.DigitMatch,
			confidence: 66,
			reason:     fmt.Sprintf("digit %d overdue", target),
		}, true
	}

	return decision{}, false
}

func (s *Scorer) scoreDiffer(digits []int, target int) (decision, bool) {
	if len(digits) < s.policy.MinDifferSamples {
		return decision{}, false
	}

	stats := pattern.AnalyzeDigits(digits)

	// Appeared too often very recently: mean reversion.
	if countOf(lastN(digits, 10), target) >= 3 {
		return decision{
			contract:   market.DigitDiff,
			confidence: 78,
			reason:     fmt.Sprintf("digit %d overshooting recently", target),
		}, true
	}

	// Hot with a fresh spike.
	if contains(stats.Hot, target) && countOf(lastN(digits, 5), target) >= 2 {
		return decision{
			contract:   market.DigitDiff,
			confidence: 76,
			reason:     fmt.Sprintf("digit %d hot with a recent spike", target),
		}, true
	}

	// A streak is likely to break.
	if pattern.DigitStreak(digits, target) >= 2 {
		return decision{
			contract:   market.DigitDiff,
			confidence: 74,
			reason:     fmt.Sprintf("digit %d streak likely to break", target),
		}, true
	}

	// Default frequency: the contract wins unless the exact digit prints,
	// so a neutral window still carries a tradeable baseline.
	return decision{
		contract:   market.DigitDiff,
		confidence: 70,
		reason:     fmt.Sprintf("digit %d at neutral frequency", target),
	}, true
}

func contains(ds []int, target int) bool {
	for _, d := range ds {
		if d == target {
			return true
		}
	}
	return false
}

// soleHottest reports whether exactly one digit holds the maximum count.
func soleHottest(stats pattern.DigitStats) bool {
	max := stats.Counts[stats.Hottest]
	n := 0
	for _, c := range stats.Counts {
		if c == max {
			n++
		}
	}
	return n == 1
}
