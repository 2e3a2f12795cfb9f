package signal

// Policy is the tunable threshold table for every scoring family. The
// defaults are the canonical values; treat the numbers as tuning knobs, not
// load-bearing constants.
type Policy struct {
	// Directional.
	EntryThreshold    float64 // minimum composite score to trade rise/fall
	VolatilityLimit   float64 // return-volatility considered "high"
	PatternWeight     float64 // share of pattern strength added as bonus
	LevelBonus        float64 // support/resistance + momentum bonus
	AlignBonus        float64 // short/medium trend alignment bonus
	VolatilityPenalty float64 // penalty when volatility is high
	CalmBonus         float64 // bonus when volatility is low

	// Parity.
	MinParitySamples int
	EvenShareHigh    float64 // even share above this reverts to odd
	EvenShareLow     float64 // even share below this reverts to even
	ParityStreakMin  int
	EvenRatioHigh    float64
	EvenRatioLow     float64

	// Over/under.
	MinBarrierSamples int
	RecentImbalance   float64 // recent-window deviation that triggers reversion
	SideStreakMin     int
	OverallImbalance  float64 // overall+recent lean that triggers alignment

	// Match/differ.
	MinMatchSamples  int
	MinDifferSamples int
}

// DefaultPolicy returns the canonical threshold table.
func DefaultPolicy() Policy {
	return Policy{
		EntryThreshold:    70,
		VolatilityLimit:   0.5,
		PatternWeight:     0.2,
		LevelBonus:        12,
		AlignBonus:        8,
		VolatilityPenalty: 5,
		CalmBonus:         3,

		MinParitySamples: 30,
		EvenShareHigh:    0.56,
		EvenShareLow:     0.24,
		ParityStreakMin:  5,
		EvenRatioHigh:    0.68,
		EvenRatioLow:     0.32,

		MinBarrierSamples: 40,
		RecentImbalance:   0.25,
		SideStreakMin:     6,
		OverallImbalance:  0.15,

		MinMatchSamples:  40,
		MinDifferSamples: 30,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.EntryThreshold == 0 {
		p.EntryThreshold = def.EntryThreshold
	}
	if p.VolatilityLimit == 0 {
		p.VolatilityLimit = def.VolatilityLimit
	}
	if p.PatternWeight == 0 {
		p.PatternWeight = def.PatternWeight
	}
	if p.LevelBonus == 0 {
		p.LevelBonus = def.LevelBonus
	}
	if p.AlignBonus == 0 {
		p.AlignBonus = def.AlignBonus
	}
	if p.VolatilityPenalty == 0 {
		p.VolatilityPenalty = def.VolatilityPenalty
	}
	if p.CalmBonus == 0 {
		p.CalmBonus = def.CalmBonus
	}
	if p.MinParitySamples == 0 {
		p.MinParitySamples = def.MinParitySamples
	}
	if p.EvenShareHigh == 0 {
		p.EvenShareHigh = def.EvenShareHigh
	}
	if p.EvenShareLow == 0 {
		p.EvenShareLow = def.EvenShareLow
	}
	if p.ParityStreakMin == 0 {
		p.ParityStreakMin = def.ParityStreakMin
	}
	if p.EvenRatioHigh == 0 {
		p.EvenRatioHigh = def.EvenRatioHigh
	}
	if p.EvenRatioLow == 0 {
		p.EvenRatioLow = def.EvenRatioLow
	}
	if p.MinBarrierSamples == 0 {
		p.MinBarrierSamples = def.MinBarrierSamples
	}
	if p.RecentImbalance == 0 {
		p.RecentImbalance = def.RecentImbalance
	}
	if p.SideStreakMin == 0 {
		p.SideStreakMin = def.SideStreakMin
	}
	if p.OverallImbalance == 0 {
		p.OverallImbalance = def.OverallImbalance
	}
	if p.MinMatchSamples == 0 {
		p.MinMatchSamples = def.MinMatchSamples
	}
	if p.MinDifferSamples == 0 {
		p.MinDifferSamples = def.MinDifferSamples
	}
	return p
}
