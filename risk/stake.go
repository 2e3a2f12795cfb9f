// Package risk computes the stake for one executed signal.
package risk

import "math"

// Tier caps, as multiples of the base stake. High-confidence signals are
// allowed a larger recovery stake.
const (
	capStandard       = 5.0
	capHighConfidence = 8.0
	highConfidence    = 85.0
)

// Plan is the sizing decision for one signal.
type Plan struct {
	BaseStake  float64
	Multiplier float64 // 1 when no recovery step applied
	Stake      float64 // capped, rounded to 2 decimals
}

// StakeFor sizes a trade. After any loss the base stake is multiplied by the
// recovery multiplier exactly once; the step does not compound with further
// consecutive losses. The result is capped at a confidence-tiered multiple
// of the base stake and rounded to two decimals before submission.
func StakeFor(base float64, consecutiveLosses int, multiplier, confidence float64) Plan {
	p := Plan{BaseStake: base, Multiplier: 1}
	if base <= 0 {
		return p
	}

	stake := base
	if consecutiveLosses > 0 && multiplier > 1 {
		stake = base * multiplier
		p.Multiplier = multiplier
	}

	tierCap := capStandard
	if confidence >= highConfidence {
		tierCap = capHighConfidence
	}
	if stake > base*tierCap {
		stake = base * tierCap
		p.Multiplier = tierCap
	}

	p.Stake = math.Round(stake*100) / 100
	return p
}
