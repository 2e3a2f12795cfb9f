// Package engine runs the trade lifecycle: it arms and disarms trading,
// enforces cooldown and take-profit/stop-loss halts, sizes stakes, places
// contracts through the broker, consumes settlement pushes and maintains the
// session ledger.
//
// All mutation happens under one mutex; the broker's reader goroutine and the
// caller never race on buffers or ledger state.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/tickbot/broker"
	"github.com/rustyeddy/tickbot/events"
	"github.com/rustyeddy/tickbot/internal/clock"
	"github.com/rustyeddy/tickbot/journal"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/metrics"
	"github.com/rustyeddy/tickbot/risk"
	"github.com/rustyeddy/tickbot/signal"
)

// State is the trade-lifecycle state.
type State string

const (
	StateIdle     State = "IDLE"
	StateArmed    State = "ARMED"
	StateCooldown State = "COOLDOWN"
	StateHalted   State = "HALTED"
)

// Config is the trade policy the caller passes with each operation.
type Config struct {
	Symbol             string
	Contract           market.ContractType
	Barrier            int
	Stake              float64
	Currency           string
	Duration           int
	DurationUnit       string
	Martingale         float64
	ContractsPerSignal int
	TradeDelay         time.Duration
	Cooldown           time.Duration
	TakeProfit         float64
	StopLoss           float64
}

// Contract is an open order at the broker, pending settlement.
type Contract struct {
	ID       string
	Symbol   string
	Type     market.ContractType
	Stake    float64
	OpenedAt time.Time
}

// Outcome of a settled contract.
type Outcome string

const (
	Win  Outcome = "WIN"
	Loss Outcome = "LOSS"
)

// TradeResult is a settled contract, immutable once appended to the ledger.
type TradeResult struct {
	ID        string
	Symbol    string
	Type      market.ContractType
	Stake     float64
	Profit    float64
	Outcome   Outcome
	SettledAt time.Time
}

// Stats is a snapshot of the session ledger.
type Stats struct {
	State             State
	Trades            int
	Wins              int
	Losses            int
	WinRate           float64
	BestStreak        int
	CurrentStreak     int
	ConsecutiveLosses int
	SessionProfit     float64
	SessionLoss       float64
	Net               float64
}

// Options are the engine's collaborators. Zero fields get working defaults.
type Options struct {
	Clock   clock.Clock
	Journal journal.Journal
	Emitter events.Emitter
	Metrics *metrics.Set
	Logger  zerolog.Logger
	Policy  signal.Policy
}

// Engine is the streaming decision and execution engine for one session.
type Engine struct {
	mu sync.Mutex

	brk    broker.Broker
	clk    clock.Clock
	jnl    journal.Journal
	emit   events.Emitter
	met    *metrics.Set
	log    zerolog.Logger
	scorer *signal.Scorer

	state     State
	cfg       Config // active policy while armed
	executing bool
	cooldown  clock.Timer

	book    *market.Book
	open    map[string]Contract
	history []TradeResult

	consecutiveLosses int
	sessionProfit     float64
	sessionLoss       float64
	wins, losses      int
	bestStreak        int
	currentStreak     int
	balance           float64
}

// New builds an engine around a broker.
func New(b broker.Broker, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Journal == nil {
		opts.Journal = journal.Nop{}
	}
	if opts.Emitter == nil {
		opts.Emitter = events.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}

	return &Engine{
		brk:    b,
		clk:    opts.Clock,
		jnl:    opts.Journal,
		emit:   opts.Emitter,
		met:    opts.Metrics,
		log:    opts.Logger,
		scorer: signal.NewScorer(opts.Policy),
		state:  StateIdle,
		book:   market.NewBook(),
		open:   make(map[string]Contract),
	}
}

// Bind registers the engine's push handlers on the broker. Ticks drive the
// scoring path, contract updates drive settlement, balance pushes keep the
// account snapshot fresh.
func (e *Engine) Bind() {
	e.brk.Subscribe(broker.MsgTick, func(p broker.Push) {
		if p.Tick != nil {
			e.OnTick(*p.Tick)
		}
	})
	e.brk.Subscribe(broker.MsgContract, func(p broker.Push) {
		if p.Contract != nil {
			e.HandleContractUpdate(*p.Contract)
		}
	})
	e.brk.Subscribe(broker.MsgBalance, func(p broker.Push) {
		if p.Balance != nil {
			e.mu.Lock()
			e.balance = p.Balance.Balance
			e.mu.Unlock()
		}
	})
}

// Start arms trading with the given policy.
func (e *Engine) Start(cfg Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.state = StateArmed
	e.log.Info().Str("symbol", cfg.Symbol).Str("contract", string(cfg.Contract)).Msg("trading armed")
}

// Stop disarms trading. In-flight buy requests and pending settlements keep
// running to completion; only new signals stop being acted on.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopCooldownLocked()
	e.state = StateIdle
	e.log.Info().Msg("trading stopped")
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// AddPriceData appends a tick to the symbol's rolling window.
func (e *Engine) AddPriceData(symbol string, price float64) {
	e.mu.Lock()
	e.book.Add(symbol, price)
	e.mu.Unlock()
	e.met.Ticks.Inc()
}

// OnTick is the streaming entry point: buffer the tick, and while armed run
// the scorer and hand any signal to execution.
func (e *Engine) OnTick(t broker.TickEvent) {
	e.AddPriceData(t.Symbol, t.Price)

	e.mu.Lock()
	armed := e.state == StateArmed && !e.executing
	cfg := e.cfg
	e.mu.Unlock()
	if !armed || cfg.Symbol != t.Symbol {
		return
	}

	sig := e.GenerateSignal(t.Symbol, cfg)
	if sig == nil {
		return
	}

	// Execution runs off the reader goroutine; the guard inside
	// ExecuteTrade is what prevents a second signal from double-trading.
	go func() {
		_ = e.ExecuteTrade(context.Background(), sig, cfg)
	}()
}

// GenerateSignal scores the symbol's current window. Nil means no trade is
// warranted.
func (e *Engine) GenerateSignal(symbol string, cfg Config) *signal.Signal {
	e.mu.Lock()
	buf := e.book.Buffer(symbol)
	sig := e.scorer.Score(buf, symbol, signal.Request{Contract: cfg.Contract, Barrier: cfg.Barrier})
	e.mu.Unlock()

	if sig == nil {
		return nil
	}

	e.met.Signals.Inc()
	e.emit.Emit(events.Event{
		Type:       events.SignalGenerated,
		Time:       sig.Time,
		Symbol:     sig.Symbol,
		Contract:   sig.Contract,
		Confidence: sig.Confidence,
		Reason:     sig.Reason,
	})
	e.log.Debug().
		Str("symbol", sig.Symbol).
		Str("contract", string(sig.Contract)).
		Float64("confidence", sig.Confidence).
		Msg("signal generated")
	return sig
}

// ExecuteTrade places the batch of contracts for one accepted signal.
//
// Guard order: halted, then cooldown/in-flight, then the take-profit/stop-
// loss check. A skipped signal returns nil. The in-flight flag is set under
// the lock before any request is issued, so a concurrent second signal can
// never enter execution for the same decision cycle. Buy rejections are
// logged and swallowed: a non-placed order is not a loss.
func (e *Engine) ExecuteTrade(ctx context.Context, sig *signal.Signal, cfg Config) error {
	if sig == nil {
		return nil
	}

	e.mu.Lock()
	if e.state == StateIdle || e.state == StateHalted || e.state == StateCooldown || e.executing {
		e.mu.Unlock()
		return nil
	}
	if e.checkHaltLocked(cfg) {
		e.mu.Unlock()
		return nil
	}
	plan := risk.StakeFor(cfg.Stake, e.consecutiveLosses, cfg.Martingale, sig.Confidence)
	e.executing = true
	e.mu.Unlock()

	batch := cfg.ContractsPerSignal
	if batch < 1 {
		batch = 1
	}

	placed := 0
loop:
	for i := 0; i < batch; i++ {
		if i > 0 && cfg.TradeDelay > 0 {
			select {
			case <-e.clk.After(cfg.TradeDelay):
			case <-ctx.Done():
				break loop
			}
		}

		req := broker.BuyRequest{
			Symbol:       sig.Symbol,
			Contract:     sig.Contract,
			Stake:        plan.Stake,
			Currency:     cfg.Currency,
			Duration:     cfg.Duration,
			DurationUnit: cfg.DurationUnit,
		}
		if market.NeedsBarrier(sig.Contract) {
			barrier := cfg.Barrier
			req.Barrier = &barrier
		}

		confirm, err := e.brk.Buy(ctx, req)
		if err != nil {
			e.log.Warn().Err(err).Str("symbol", sig.Symbol).Msg("buy rejected")
			continue
		}

		c := Contract{
			ID:       confirm.ContractID,
			Symbol:   sig.Symbol,
			Type:     sig.Contract,
			Stake:    plan.Stake,
			OpenedAt: e.clk.Now(),
		}
		e.mu.Lock()
		e.open[c.ID] = c
		e.mu.Unlock()
		placed++

		e.met.Trades.Inc()
		e.emit.Emit(events.Event{
			Type:       events.TradeSubmitted,
			Time:       c.OpenedAt,
			Symbol:     c.Symbol,
			Contract:   c.Type,
			Confidence: sig.Confidence,
			Stake:      c.Stake,
		})
		e.log.Info().
			Str("contract_id", c.ID).
			Str("symbol", c.Symbol).
			Str("type", string(c.Type)).
			Float64("stake", c.Stake).
			Msg("trade submitted")
	}

	e.mu.Lock()
	e.executing = false
	if placed > 0 && e.state == StateArmed && cfg.Cooldown > 0 {
		e.state = StateCooldown
		e.cooldown = e.clk.AfterFunc(cfg.Cooldown, e.endCooldown)
	}
	e.mu.Unlock()
	return nil
}

func (e *Engine) endCooldown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldown = nil
	if e.state == StateCooldown {
		e.state = StateArmed
	}
}

func (e *Engine) stopCooldownLocked() {
	if e.cooldown != nil {
		e.cooldown.Stop()
		e.cooldown = nil
	}
}

// HandleContractUpdate consumes a contract-lifecycle push. Settlement of a
// tracked contract updates the session ledger; anything else is ignored.
func (e *Engine) HandleContractUpdate(u broker.ContractUpdate) {
	if !u.Settled {
		return
	}

	e.mu.Lock()
	c, ok := e.open[u.ContractID]
	if !ok {
		e.mu.Unlock()
		return
	}
	delete(e.open, u.ContractID)

	outcome := Loss
	if u.Profit > 0 {
		outcome = Win
		e.wins++
		e.currentStreak++
		if e.currentStreak > e.bestStreak {
			e.bestStreak = e.currentStreak
		}
		e.consecutiveLosses = 0
		e.sessionProfit += u.Profit
	} else {
		e.losses++
		e.currentStreak = 0
		e.consecutiveLosses++
		e.sessionLoss += u.Profit
	}

	result := TradeResult{
		ID:        c.ID,
		Symbol:    c.Symbol,
		Type:      c.Type,
		Stake:     c.Stake,
		Profit:    u.Profit,
		Outcome:   outcome,
		SettledAt: e.clk.Now(),
	}
	e.history = append(e.history, result)
	net := e.sessionProfit + e.sessionLoss

	if err := e.jnl.RecordTrade(journal.TradeRecord{
		TradeID:   result.ID,
		Symbol:    result.Symbol,
		Contract:  string(result.Type),
		Stake:     result.Stake,
		Profit:    result.Profit,
		Outcome:   string(result.Outcome),
		OpenTime:  c.OpenedAt,
		CloseTime: result.SettledAt,
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal write failed")
	}
	e.mu.Unlock()

	if outcome == Win {
		e.met.Wins.Inc()
	} else {
		e.met.Losses.Inc()
	}
	e.met.SessionNet.Set(net)

	e.emit.Emit(events.Event{
		Type:     events.TradeSettled,
		Time:     result.SettledAt,
		Symbol:   result.Symbol,
		Contract: result.Type,
		Stake:    result.Stake,
		Profit:   result.Profit,
		Outcome:  string(outcome),
	})
	e.log.Info().
		Str("contract_id", result.ID).
		Str("outcome", string(outcome)).
		Float64("profit", result.Profit).
		Msg("trade settled")
}

// CheckTakeProfitStopLoss reports whether a session limit has been crossed,
// transitioning to HALTED on the first crossing. Halting is a normal
// terminal transition, not a failure.
func (e *Engine) CheckTakeProfitStopLoss(cfg Config) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.checkHaltLocked(cfg)
}

func (e *Engine) checkHaltLocked(cfg Config) bool {
	if e.state == StateHalted {
		return true
	}

	net := e.sessionProfit + e.sessionLoss
	switch {
	case cfg.TakeProfit > 0 && net >= cfg.TakeProfit:
		e.haltLocked("take profit reached", net)
		return true
	case cfg.StopLoss > 0 && net <= -cfg.StopLoss:
		e.haltLocked("stop loss reached", net)
		return true
	}
	return false
}

func (e *Engine) haltLocked(reason string, net float64) {
	e.stopCooldownLocked()
	e.state = StateHalted

	if err := e.jnl.RecordSession(e.sessionSnapshotLocked()); err != nil {
		e.log.Warn().Err(err).Msg("journal write failed")
	}
	e.emit.Emit(events.Event{
		Type:   events.Halted,
		Time:   e.clk.Now(),
		Reason: reason,
		Profit: net,
	})
	e.log.Info().Str("reason", reason).Float64("net", net).Msg("trading halted")
}

func (e *Engine) sessionSnapshotLocked() journal.SessionSnapshot {
	return journal.SessionSnapshot{
		Time:              e.clk.Now(),
		Wins:              e.wins,
		Losses:            e.losses,
		ConsecutiveLosses: e.consecutiveLosses,
		SessionProfit:     e.sessionProfit,
		SessionLoss:       e.sessionLoss,
		Net:               e.sessionProfit + e.sessionLoss,
	}
}

// GetStats returns a snapshot of the session ledger. Calling it repeatedly
// without an intervening settlement returns identical values.
func (e *Engine) GetStats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Stats{
		State:             e.state,
		Trades:            e.wins + e.losses,
		Wins:              e.wins,
		Losses:            e.losses,
		BestStreak:        e.bestStreak,
		CurrentStreak:     e.currentStreak,
		ConsecutiveLosses: e.consecutiveLosses,
		SessionProfit:     e.sessionProfit,
		SessionLoss:       e.sessionLoss,
		Net:               e.sessionProfit + e.sessionLoss,
	}
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
	return s
}

// GetHistory returns the settled-trade ledger, oldest first.
func (e *Engine) GetHistory() []TradeResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]TradeResult, len(e.history))
	copy(out, e.history)
	return out
}

// GetSessionProfitLoss returns the session accumulators and their net.
func (e *Engine) GetSessionProfitLoss() (profit, loss, net float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionProfit, e.sessionLoss, e.sessionProfit + e.sessionLoss
}

// OpenContracts returns the currently tracked contracts.
func (e *Engine) OpenContracts() []Contract {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Contract, 0, len(e.open))
	for _, c := range e.open {
		out = append(out, c)
	}
	return out
}

// Balance returns the last pushed account balance.
func (e *Engine) Balance() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance
}

// Reset returns the engine to IDLE: cancels the cooldown timer, clears the
// buffers, the open set and the session counters. The settled-trade history
// survives until ClearHistory.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.wins+e.losses > 0 {
		if err := e.jnl.RecordSession(e.sessionSnapshotLocked()); err != nil {
			e.log.Warn().Err(err).Msg("journal write failed")
		}
	}

	e.stopCooldownLocked()
	e.state = StateIdle
	e.executing = false
	e.book.Reset()
	e.open = make(map[string]Contract)
	e.consecutiveLosses = 0
	e.sessionProfit = 0
	e.sessionLoss = 0
	e.wins = 0
	e.losses = 0
	e.bestStreak = 0
	e.currentStreak = 0
}

// ClearHistory drops the settled-trade ledger.
func (e *Engine) ClearHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}
