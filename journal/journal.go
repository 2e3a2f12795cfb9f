package journal

import "time"

// TradeRecord is one settled contract.
type TradeRecord struct {
	TradeID   string
	Symbol    string
	Contract  string
	Stake     float64
	Profit    float64
	Outcome   string // WIN or LOSS
	OpenTime  time.Time
	CloseTime time.Time
}

// SessionSnapshot is the session ledger at a point in time, written on halt
// and reset.
type SessionSnapshot struct {
	Time              time.Time
	Wins              int
	Losses            int
	ConsecutiveLosses int
	SessionProfit     float64
	SessionLoss       float64
	Net               float64
}

// Journal persists trading activity.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordSession(SessionSnapshot) error
	Close() error
}

// Nop discards all records. Used when no journal is configured.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordSession(SessionSnapshot) error { return nil }
func (Nop) Close() error                        { return nil }
