// Package signal turns a per-symbol price/digit window into a concrete
// contract decision with a confidence score, or decides that no trade is
// warranted.
//
// Each contract family evaluates a fixed, ordered list of heuristic layers
// and takes the first matching one. Confidence is always clamped to
// [0, MaxConfidence]; when no layer matches the scorer returns nil.
package signal

import (
	"time"

	"github.com/rustyeddy/tickbot/indicators"
	"github.com/rustyeddy/tickbot/internal/id"
	"github.com/rustyeddy/tickbot/market"
)

// MaxConfidence is the ceiling for every family's score.
const MaxConfidence = 95

// Signal is a proposed trade. It is produced by the Scorer and consumed
// immediately by the execution engine.
type Signal struct {
	ID         string
	Symbol     string
	Contract   market.ContractType
	Confidence float64
	Snapshot   indicators.Snapshot
	Reason     string
	Time       time.Time
}

// Request describes what the caller wants scored: the configured contract
// type (the scorer may flip to the opposite side within the same family) and
// the barrier/target digit for the barrier families.
type Request struct {
	Contract market.ContractType
	Barrier  int
}

// Scorer scores windows against a policy. Zero state is carried between
// calls; every Score call recomputes from the window snapshot.
type Scorer struct {
	policy Policy
	now    func() time.Time
	ids    *id.Generator
}

// NewScorer returns a scorer with the given policy. Zero-valued policy
// fields are filled from DefaultPolicy.
func NewScorer(p Policy) *Scorer {
	return &Scorer{policy: p.withDefaults(), now: time.Now, ids: id.NewGenerator()}
}

// Score evaluates the window for the requested contract family. It returns
// nil when no heuristic layer produces a tradeable decision.
func (s *Scorer) Score(buf *market.Buffer, symbol string, req Request) *Signal {
	prices := buf.Prices()
	digits := buf.Digits()
	snap := indicators.TakeSnapshot(prices)

	var d decision
	var ok bool
	switch market.FamilyOf(req.Contract) {
	case market.FamilyDirectional:
		d, ok = s.scoreDirectional(prices, snap)
	case market.FamilyParity:
		d, ok = s.scoreParity(digits)
	case market.FamilyOverUnder:
		d, ok = s.scoreOverUnder(prices, digits, snap, req.Barrier)
	case market.FamilyMatchDiff:
		d, ok = s.scoreMatchDiff(digits, req.Contract, req.Barrier)
	}
	if !ok {
		return nil
	}

	conf := clamp(d.confidence, 0, MaxConfidence)
	return &Signal{
		ID:         s.ids.New(),
		Symbol:     symbol,
		Contract:   d.contract,
		Confidence: conf,
		Snapshot:   snap,
		Reason:     d.reason,
		Time:       s.now(),
	}
}

// decision is one family's verdict before clamping.
type decision struct {
	contract   market.ContractType
	confidence float64
	reason     string
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
