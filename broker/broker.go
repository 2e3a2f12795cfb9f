// Package broker defines the surface the engine uses to talk to the trading
// backend, plus the typed message shapes exchanged with it. The live
// implementation over a websocket lives in broker/ws; tests substitute fakes.
package broker

import (
	"context"
	"errors"

	"github.com/rustyeddy/tickbot/market"
)

// ErrNotConnected is returned for any request issued while the link is down.
var ErrNotConnected = errors.New("broker: not connected")

// Broker is the engine's view of the trading backend.
type Broker interface {
	// Connect dials, authorizes with the credential token and keeps the
	// token for re-authorization after a reconnect.
	Connect(ctx context.Context, token string) (AuthInfo, error)

	// Buy places one contract and returns the broker's confirmation.
	Buy(ctx context.Context, req BuyRequest) (BuyConfirm, error)

	// SubscribeTicks starts the tick stream for a symbol. Ticks arrive on
	// the push handler registered for MsgTick.
	SubscribeTicks(ctx context.Context, symbol string) error

	// UnsubscribeTicks forgets the tick stream for a symbol. Unknown
	// symbols are a no-op.
	UnsubscribeTicks(ctx context.Context, symbol string) error

	// Subscribe registers the persistent handler for one push type,
	// replacing any previous handler for that type.
	Subscribe(t MsgType, h PushHandler)

	// Unsubscribe removes the handler for one push type.
	Unsubscribe(t MsgType)

	IsConnected() bool
	Close() error
}

// MsgType is the push discriminator on inbound messages.
type MsgType string

const (
	MsgTick     MsgType = "tick"
	MsgContract MsgType = "proposal_open_contract"
	MsgBalance  MsgType = "balance"
)

// PushHandler consumes unsolicited pushes of one type.
type PushHandler func(Push)

// Push is a tagged union over the known push shapes; exactly one of the
// pointer fields matching Type is set.
type Push struct {
	Type     MsgType
	Tick     *TickEvent
	Contract *ContractUpdate
	Balance  *BalanceUpdate
}

// AuthInfo is the result of a successful authorization.
type AuthInfo struct {
	LoginID  string
	Balance  float64
	Currency string
}

// BuyRequest is one contract purchase.
type BuyRequest struct {
	Symbol       string
	Contract     market.ContractType
	Stake        float64
	Currency     string
	Duration     int
	DurationUnit string
	Barrier      *int // digit, required for the barrier families
}

// BuyConfirm is the broker's acceptance of a buy.
type BuyConfirm struct {
	ContractID string
	BuyPrice   float64
	LongCode   string
}

// TickEvent is one price update push.
type TickEvent struct {
	Symbol string
	Price  float64
	Epoch  int64
}

// ContractUpdate is a contract-lifecycle push; Settled marks settlement,
// at which point Profit carries the signed result.
type ContractUpdate struct {
	ContractID string
	Symbol     string
	Settled    bool
	Profit     float64
	Payout     float64
}

// BalanceUpdate is an account balance push.
type BalanceUpdate struct {
	Balance  float64
	Currency string
}

// APIError is a per-request error carried in a response envelope. It rejects
// only the request it correlates with.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return "broker: " + e.Message
	}
	return "broker: " + e.Code + ": " + e.Message
}
