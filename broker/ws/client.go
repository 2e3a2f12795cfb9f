// Package ws implements the broker interface over a websocket RPC link.
//
// Requests carry a monotonically increasing req_id; the single reader
// goroutine matches responses back to their waiting caller and routes
// everything else to the registered push handlers. A dropped link is redialed
// a bounded number of times, re-authorized with the stored token, and every
// tick subscription is replayed before normal traffic resumes.
package ws

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/tickbot/broker"
	"github.com/rustyeddy/tickbot/events"
	"github.com/rustyeddy/tickbot/internal/clock"
	"github.com/rustyeddy/tickbot/metrics"
)

const (
	defaultDialTimeout       = 10 * time.Second
	defaultWriteTimeout      = 5 * time.Second
	defaultReconnectAttempts = 5
	defaultReconnectDelay    = 3 * time.Second
)

// Options configures the client. Zero fields get working defaults.
type Options struct {
	URL               string
	DialTimeout       time.Duration
	WriteTimeout      time.Duration
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	Clock   clock.Clock
	Logger  zerolog.Logger
	Emitter events.Emitter
	Metrics *metrics.Set
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = defaultDialTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.ReconnectAttempts <= 0 {
		o.ReconnectAttempts = defaultReconnectAttempts
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = defaultReconnectDelay
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Emitter == nil {
		o.Emitter = events.Nop{}
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New(nil)
	}
	return o
}

// result pairs a response envelope with a transport error for the waiting
// caller; exactly one side is meaningful.
type result struct {
	env envelope
	err error
}

var _ broker.Broker = (*Client)(nil)

// Client is the live broker over a websocket.
type Client struct {
	opts Options
	log  zerolog.Logger

	reqID atomic.Int64

	mu        sync.Mutex // guards conn, connected, closed, token, subs
	conn      *websocket.Conn
	connected bool
	closed    bool
	token     string
	subs      map[string]string // symbol -> stream subscription id

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan result

	handlersMu sync.RWMutex
	handlers   map[broker.MsgType]broker.PushHandler
}

// New builds an unconnected client.
func New(opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		opts:     opts,
		log:      opts.Logger,
		subs:     make(map[string]string),
		pending:  make(map[int64]chan result),
		handlers: make(map[broker.MsgType]broker.PushHandler),
	}
}

// Connect dials the endpoint, starts the reader and authorizes with token.
// The token is kept for re-authorization after a reconnect.
func (c *Client) Connect(ctx context.Context, token string) (broker.AuthInfo, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return broker.AuthInfo{}, err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.token = token
	c.mu.Unlock()

	go c.readLoop(conn)

	auth, err := c.authorize(ctx, token)
	if err != nil {
		c.Close()
		return broker.AuthInfo{}, err
	}

	// Contract settlements and balance changes arrive as streams; subscribe
	// once and fan them out through the push handlers.
	if _, err := c.call(ctx, request{ProposalOpenContract: 1, Subscribe: 1}); err != nil {
		c.log.Warn().Err(err).Msg("contract stream subscription failed")
	}
	if _, err := c.call(ctx, request{Balance: 1, Subscribe: 1}); err != nil {
		c.log.Warn().Err(err).Msg("balance stream subscription failed")
	}

	c.log.Info().Str("loginid", auth.LoginID).Str("currency", auth.Currency).Msg("connected")
	return auth, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.opts.DialTimeout}
	conn, _, err := dialer.DialContext(ctx, c.opts.URL, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(1 << 20)
	return conn, nil
}

func (c *Client) authorize(ctx context.Context, token string) (broker.AuthInfo, error) {
	env, err := c.call(ctx, request{Authorize: token})
	if err != nil {
		return broker.AuthInfo{}, err
	}
	if env.Authorize == nil {
		return broker.AuthInfo{}, &broker.APIError{Message: "malformed authorize response"}
	}
	return broker.AuthInfo{
		LoginID:  env.Authorize.LoginID,
		Balance:  env.Authorize.Balance,
		Currency: env.Authorize.Currency,
	}, nil
}

// Buy places one contract and waits for the confirmation.
func (c *Client) Buy(ctx context.Context, req broker.BuyRequest) (broker.BuyConfirm, error) {
	env, err := c.call(ctx, request{
		Buy:   1,
		Price: req.Stake,
		Parameters: &buyParameters{
			Amount:       req.Stake,
			Basis:        "stake",
			ContractType: string(req.Contract),
			Currency:     req.Currency,
			Duration:     req.Duration,
			DurationUnit: req.DurationUnit,
			Symbol:       req.Symbol,
			Barrier:      req.Barrier,
		},
	})
	if err != nil {
		return broker.BuyConfirm{}, err
	}
	if env.Buy == nil {
		return broker.BuyConfirm{}, &broker.APIError{Message: "malformed buy response"}
	}
	return broker.BuyConfirm{
		ContractID: strconv.FormatInt(env.Buy.ContractID, 10),
		BuyPrice:   env.Buy.BuyPrice,
		LongCode:   env.Buy.Longcode,
	}, nil
}

// SubscribeTicks starts the tick stream for symbol. The subscription is
// remembered and replayed after a reconnect.
func (c *Client) SubscribeTicks(ctx context.Context, symbol string) error {
	env, err := c.call(ctx, request{Ticks: symbol, Subscribe: 1})
	if err != nil {
		return err
	}
	var subID string
	if env.Subscription != nil {
		subID = env.Subscription.ID
	}
	c.mu.Lock()
	c.subs[symbol] = subID
	c.mu.Unlock()
	return nil
}

// UnsubscribeTicks forgets the symbol's tick stream. Unknown symbols are a
// no-op.
func (c *Client) UnsubscribeTicks(ctx context.Context, symbol string) error {
	c.mu.Lock()
	subID, ok := c.subs[symbol]
	delete(c.subs, symbol)
	c.mu.Unlock()
	if !ok || subID == "" {
		return nil
	}
	_, err := c.call(ctx, request{Forget: subID})
	return err
}

// Subscribe registers the persistent handler for one push type.
func (c *Client) Subscribe(t broker.MsgType, h broker.PushHandler) {
	c.handlersMu.Lock()
	c.handlers[t] = h
	c.handlersMu.Unlock()
}

// Unsubscribe removes the handler for one push type.
func (c *Client) Unsubscribe(t broker.MsgType) {
	c.handlersMu.Lock()
	delete(c.handlers, t)
	c.handlersMu.Unlock()
}

// IsConnected reports whether the link is up.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close tears the link down for good; no reconnect is attempted.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	c.failPending(broker.ErrNotConnected)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// call sends one request and waits for its correlated response. A response
// carrying an error field fails only this call.
func (c *Client) call(ctx context.Context, req request) (envelope, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return envelope{}, broker.ErrNotConnected
	}
	conn := c.conn
	c.mu.Unlock()

	req.ReqID = c.reqID.Add(1)

	ch := make(chan result, 1)
	c.pendingMu.Lock()
	c.pending[req.ReqID] = ch
	c.pendingMu.Unlock()

	if err := c.write(conn, req); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, req.ReqID)
		c.pendingMu.Unlock()
		return envelope{}, err
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return envelope{}, res.err
		}
		if res.env.Error != nil {
			return envelope{}, &broker.APIError{Code: res.env.Error.Code, Message: res.env.Error.Message}
		}
		return res.env, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, req.ReqID)
		c.pendingMu.Unlock()
		return envelope{}, ctx.Err()
	}
}

// write serializes access to the connection; gorilla allows one concurrent
// writer only.
func (c *Client) write(conn *websocket.Conn, req request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return conn.WriteJSON(req)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			c.mu.Lock()
			closed := c.closed || c.conn != conn
			c.mu.Unlock()
			if closed {
				return
			}
			c.log.Warn().Err(err).Msg("link dropped")
			c.handleDisconnect(conn)
			return
		}
		c.dispatch(env)
	}
}

// dispatch routes one inbound message twice: a pending req_id completes that
// call (at most once), and the msg_type switch hands the payload to the push
// handlers either way. A subscribe response that carries the stream's first
// update therefore both resolves the subscriber and lands in the push path.
func (c *Client) dispatch(env envelope) {
	correlated := false
	if env.ReqID != 0 {
		c.pendingMu.Lock()
		ch, ok := c.pending[env.ReqID]
		if ok {
			delete(c.pending, env.ReqID)
		}
		c.pendingMu.Unlock()
		if ok {
			ch <- result{env: env}
			correlated = true
		}
	}

	if env.Error != nil {
		if !correlated {
			c.log.Warn().Str("code", env.Error.Code).Str("message", env.Error.Message).Msg("unsolicited error")
		}
		return
	}

	switch env.MsgType {
	case "tick":
		if env.Tick == nil {
			return
		}
		c.push(broker.MsgTick, broker.Push{
			Type: broker.MsgTick,
			Tick: &broker.TickEvent{
				Symbol: env.Tick.Symbol,
				Price:  env.Tick.Quote,
				Epoch:  env.Tick.Epoch,
			},
		})
	case "proposal_open_contract":
		if env.ProposalOpenContract == nil {
			return
		}
		poc := env.ProposalOpenContract
		c.push(broker.MsgContract, broker.Push{
			Type: broker.MsgContract,
			Contract: &broker.ContractUpdate{
				ContractID: strconv.FormatInt(poc.ContractID, 10),
				Symbol:     poc.Underlying,
				Settled:    poc.IsSold == 1,
				Profit:     poc.Profit,
				Payout:     poc.Payout,
			},
		})
	case "balance":
		if env.Balance == nil {
			return
		}
		c.push(broker.MsgBalance, broker.Push{
			Type: broker.MsgBalance,
			Balance: &broker.BalanceUpdate{
				Balance:  env.Balance.Balance,
				Currency: env.Balance.Currency,
			},
		})
	}
}

func (c *Client) push(t broker.MsgType, p broker.Push) {
	c.handlersMu.RLock()
	h := c.handlers[t]
	c.handlersMu.RUnlock()
	if h != nil {
		h(p)
	}
}

// failPending unblocks every in-flight call with err.
func (c *Client) failPending(err error) {
	c.pendingMu.Lock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- result{err: err}
	}
	c.pendingMu.Unlock()
}

// handleDisconnect runs the bounded reconnect loop: redial, re-authorize,
// replay tick subscriptions. Exhausting the attempts leaves the client
// disconnected; callers then get ErrNotConnected.
func (c *Client) handleDisconnect(old *websocket.Conn) {
	old.Close()
	c.mu.Lock()
	c.connected = false
	token := c.token
	c.mu.Unlock()

	c.failPending(broker.ErrNotConnected)

	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		<-c.opts.Clock.After(c.opts.ReconnectDelay)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		c.log.Info().Int("attempt", attempt).Msg("reconnecting")
		if c.reconnect(token) {
			c.opts.Metrics.Reconnects.Inc()
			c.opts.Emitter.Emit(events.Event{
				Type: events.Reconnected,
				Time: c.opts.Clock.Now(),
			})
			c.log.Info().Msg("reconnected")
			return
		}
	}

	c.log.Error().Int("attempts", c.opts.ReconnectAttempts).Msg("reconnect failed, giving up")
}

func (c *Client) reconnect(token string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.DialTimeout)
	defer cancel()

	conn, err := c.dial(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("redial failed")
		return false
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	symbols := make([]string, 0, len(c.subs))
	for s := range c.subs {
		symbols = append(symbols, s)
	}
	c.mu.Unlock()

	go c.readLoop(conn)

	if _, err := c.authorize(ctx, token); err != nil {
		c.log.Warn().Err(err).Msg("re-authorization failed")
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		conn.Close()
		return false
	}

	if _, err := c.call(ctx, request{ProposalOpenContract: 1, Subscribe: 1}); err != nil {
		c.log.Warn().Err(err).Msg("contract stream resubscription failed")
	}
	if _, err := c.call(ctx, request{Balance: 1, Subscribe: 1}); err != nil {
		c.log.Warn().Err(err).Msg("balance stream resubscription failed")
	}
	for _, s := range symbols {
		env, err := c.call(ctx, request{Ticks: s, Subscribe: 1})
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", s).Msg("tick resubscription failed")
			continue
		}
		if env.Subscription != nil {
			c.mu.Lock()
			c.subs[s] = env.Subscription.ID
			c.mu.Unlock()
		}
	}
	return true
}
