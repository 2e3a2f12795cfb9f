// Package events carries structured engine notifications so the view layer
// or a test harness can observe signal, trade and lifecycle activity without
// scraping logs.
package events

import (
	"sync"
	"time"

	"github.com/rustyeddy/tickbot/market"
)

// Type discriminates engine events.
type Type string

const (
	SignalGenerated Type = "signal_generated"
	TradeSubmitted  Type = "trade_submitted"
	TradeSettled    Type = "trade_settled"
	Halted          Type = "halted"
	Reconnected     Type = "reconnected"
)

// Event is one engine notification. Fields not relevant to Type are zero.
type Event struct {
	Type       Type
	Time       time.Time
	Symbol     string
	Contract   market.ContractType
	Confidence float64
	Stake      float64
	Profit     float64
	Outcome    string
	Reason     string
}

// Emitter receives engine events. Emit must not block.
type Emitter interface {
	Emit(Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(Event) {}

// Bus fans events out to subscriber channels. Slow subscribers drop events
// rather than stall the engine.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewBus returns an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe returns a buffered channel of future events.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, 64)
	b.subs = append(b.subs, ch)
	return ch
}

// Emit delivers to every subscriber without blocking.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
