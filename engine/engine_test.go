package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tickbot/broker"
	"github.com/rustyeddy/tickbot/events"
	"github.com/rustyeddy/tickbot/internal/clock"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/signal"
)

type fakeBroker struct {
	mu       sync.Mutex
	buys     []broker.BuyRequest
	buyErr   error
	nextID   int
	handlers map[broker.MsgType]broker.PushHandler
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: make(map[broker.MsgType]broker.PushHandler)}
}

func (b *fakeBroker) Connect(ctx context.Context, token string) (broker.AuthInfo, error) {
	return broker.AuthInfo{LoginID: "CR123", Balance: 100, Currency: "USD"}, nil
}

func (b *fakeBroker) Buy(ctx context.Context, req broker.BuyRequest) (broker.BuyConfirm, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buyErr != nil {
		return broker.BuyConfirm{}, b.buyErr
	}
	b.nextID++
	b.buys = append(b.buys, req)
	return broker.BuyConfirm{ContractID: fmt.Sprintf("c%d", b.nextID), BuyPrice: req.Stake}, nil
}

func (b *fakeBroker) SubscribeTicks(ctx context.Context, symbol string) error   { return nil }
func (b *fakeBroker) UnsubscribeTicks(ctx context.Context, symbol string) error { return nil }

func (b *fakeBroker) Subscribe(t broker.MsgType, h broker.PushHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = h
}

func (b *fakeBroker) Unsubscribe(t broker.MsgType) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, t)
}

func (b *fakeBroker) IsConnected() bool { return true }
func (b *fakeBroker) Close() error      { return nil }

func (b *fakeBroker) stakes() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float64, len(b.buys))
	for i, req := range b.buys {
		out[i] = req.Stake
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *fakeBroker, *clock.Fake) {
	t.Helper()
	fb := newFakeBroker()
	clk := clock.NewFake()
	e := New(fb, Options{Clock: clk, Logger: zerolog.Nop(), Policy: signal.DefaultPolicy()})
	return e, fb, clk
}

func testCfg() Config {
	return Config{
		Symbol:       "R_100",
		Contract:     market.Call,
		Stake:        1.00,
		Currency:     "USD",
		Duration:     5,
		DurationUnit: "t",
		Martingale:   1.5,
		Cooldown:     30 * time.Second,
		TakeProfit:   50,
		StopLoss:     25,
	}
}

func testSignal(contract market.ContractType, confidence float64) *signal.Signal {
	return &signal.Signal{
		ID:         "sig",
		Symbol:     "R_100",
		Contract:   contract,
		Confidence: confidence,
	}
}

func settle(e *Engine, contractID string, profit float64) {
	e.HandleContractUpdate(broker.ContractUpdate{
		ContractID: contractID,
		Settled:    true,
		Profit:     profit,
	})
}

func TestExecuteTradeOpensContractAndCoolsDown(t *testing.T) {
	e, fb, clk := newTestEngine(t)
	cfg := testCfg()
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))

	require.Len(t, fb.buys, 1)
	assert.Equal(t, market.Call, fb.buys[0].Contract)
	assert.Equal(t, 1.00, fb.buys[0].Stake)
	assert.Nil(t, fb.buys[0].Barrier, "directional contracts carry no barrier")
	assert.Len(t, e.OpenContracts(), 1)
	assert.Equal(t, StateCooldown, e.State())

	// Second signal during cooldown is dropped.
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 80), cfg))
	assert.Len(t, fb.buys, 1)

	clk.Advance(cfg.Cooldown)
	assert.Equal(t, StateArmed, e.State())
}

func TestExecuteTradeBarrierContract(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	cfg := testCfg()
	cfg.Contract = market.DigitOver
	cfg.Barrier = 4
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.DigitOver, 75), cfg))

	require.Len(t, fb.buys, 1)
	require.NotNil(t, fb.buys[0].Barrier)
	assert.Equal(t, 4, *fb.buys[0].Barrier)
}

func TestBuyRejectionIsSwallowed(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	fb.buyErr = &broker.APIError{Code: "InvalidContract", Message: "rejected"}
	cfg := testCfg()
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))

	assert.Empty(t, e.OpenContracts(), "rejected buy must not be tracked")
	assert.Equal(t, StateArmed, e.State(), "nothing placed, no cooldown")

	// The link recovers and trading continues.
	fb.mu.Lock()
	fb.buyErr = nil
	fb.mu.Unlock()
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	assert.Len(t, e.OpenContracts(), 1)
}

func TestBatchExecution(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	cfg := testCfg()
	cfg.ContractsPerSignal = 3
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))

	assert.Len(t, fb.buys, 3)
	assert.Len(t, e.OpenContracts(), 3)
}

func TestMartingaleAfterLosses(t *testing.T) {
	e, fb, clk := newTestEngine(t)
	cfg := testCfg()
	e.Start(cfg)

	// First trade at base; after the first loss every trade in the run
	// carries the recovery stake.
	for i := 0; i < 2; i++ {
		require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
		settle(e, fmt.Sprintf("c%d", i+1), -1.00)
		clk.Advance(cfg.Cooldown)
	}

	// Recovery stake stays base times multiplier, not compounded per loss.
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	assert.Equal(t, []float64{1.00, 1.50, 1.50}, fb.stakes())

	// A win resets to base.
	settle(e, "c3", 1.42)
	clk.Advance(cfg.Cooldown)
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	assert.Equal(t, 1.00, fb.stakes()[3])
}

func TestLedgerTracksOutcomes(t *testing.T) {
	e, _, clk := newTestEngine(t)
	cfg := testCfg()
	e.Start(cfg)

	ids := []string{"c1", "c2", "c3", "c4"}
	profits := []float64{0.95, -1.00, -1.50, 0.88}
	for i := range ids {
		require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
		settle(e, ids[i], profits[i])
		clk.Advance(cfg.Cooldown)
	}

	s := e.GetStats()
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, 0, s.ConsecutiveLosses, "win resets the loss run")
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 1, s.BestStreak)
	assert.InDelta(t, 1.83, s.SessionProfit, 1e-9)
	assert.InDelta(t, -2.50, s.SessionLoss, 1e-9)
	assert.InDelta(t, -0.67, s.Net, 1e-9)

	profit, loss, net := e.GetSessionProfitLoss()
	assert.Equal(t, s.SessionProfit, profit)
	assert.Equal(t, s.SessionLoss, loss)
	assert.Equal(t, s.Net, net)

	// Reading stats is side-effect free.
	assert.Equal(t, s, e.GetStats())

	hist := e.GetHistory()
	require.Len(t, hist, 4)
	assert.Equal(t, Win, hist[0].Outcome)
	assert.Equal(t, Loss, hist[2].Outcome)
	assert.Equal(t, "c4", hist[3].ID, "ledger is settlement ordered")
}

func TestUnknownSettlementIgnored(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Start(testCfg())

	settle(e, "never-opened", 5.0)

	s := e.GetStats()
	assert.Zero(t, s.Trades)
	assert.Zero(t, s.Net)
}

func TestTakeProfitHalts(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	cfg := testCfg()
	cfg.TakeProfit = 2.0
	e.Start(cfg)

	bus := events.NewBus()
	e.emit = bus
	ch := bus.Subscribe()

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	settle(e, "c1", 2.50)

	assert.True(t, e.CheckTakeProfitStopLoss(cfg))
	assert.Equal(t, StateHalted, e.State())

	// Halted engines refuse further trades.
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 90), cfg))
	assert.Len(t, fb.buys, 1)

	var halted bool
	for done := false; !done; {
		select {
		case ev := <-ch:
			if ev.Type == events.Halted {
				halted = true
				assert.Equal(t, "take profit reached", ev.Reason)
				done = true
			}
		default:
			done = true
		}
	}
	assert.True(t, halted, "halt event emitted")
}

func TestStopLossHalts(t *testing.T) {
	e, _, clk := newTestEngine(t)
	cfg := testCfg()
	cfg.StopLoss = 2.0
	e.Start(cfg)

	for i := 0; i < 2; i++ {
		require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
		settle(e, fmt.Sprintf("c%d", i+1), -1.50)
		clk.Advance(cfg.Cooldown)
	}

	assert.True(t, e.CheckTakeProfitStopLoss(cfg))
	assert.Equal(t, StateHalted, e.State())
}

func TestExecuteTradeChecksLimitsBeforePlacing(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	cfg := testCfg()
	cfg.TakeProfit = 1.0
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	settle(e, "c1", 1.50)
	// Limit already crossed; the next signal must halt instead of trade.
	e.endCooldown()
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 90), cfg))

	assert.Len(t, fb.buys, 1)
	assert.Equal(t, StateHalted, e.State())
}

func TestGenerateSignalFromBufferedTicks(t *testing.T) {
	e, _, _ := newTestEngine(t)
	cfg := testCfg()
	cfg.Contract = market.DigitEven

	// Heavy even skew: parity reversion favors the odd side.
	for i := 0; i < 55; i++ {
		e.AddPriceData("R_100", 100.2)
	}
	for i := 0; i < 5; i++ {
		e.AddPriceData("R_100", 100.3)
	}

	sig := e.GenerateSignal("R_100", cfg)
	require.NotNil(t, sig)
	assert.Equal(t, market.DigitOdd, sig.Contract)
	assert.GreaterOrEqual(t, sig.Confidence, 70.0)
	assert.Equal(t, "R_100", sig.Symbol)
}

func TestGenerateSignalEmptyBuffer(t *testing.T) {
	e, _, _ := newTestEngine(t)
	assert.Nil(t, e.GenerateSignal("R_100", testCfg()))
}

func TestBindRoutesPushes(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	e.Bind()

	fb.handlers[broker.MsgTick](broker.Push{
		Type: broker.MsgTick,
		Tick: &broker.TickEvent{Symbol: "R_100", Price: 100.4, Epoch: 1},
	})
	fb.handlers[broker.MsgBalance](broker.Push{
		Type:    broker.MsgBalance,
		Balance: &broker.BalanceUpdate{Balance: 98.65, Currency: "USD"},
	})

	assert.Equal(t, 98.65, e.Balance())
}

func TestStopDisarms(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	cfg := testCfg()
	e.Start(cfg)
	e.Stop()

	assert.Equal(t, StateIdle, e.State())
	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 90), cfg))
	assert.Empty(t, fb.buys)
}

func TestResetClearsSessionKeepsHistory(t *testing.T) {
	e, _, clk := newTestEngine(t)
	cfg := testCfg()
	e.Start(cfg)

	require.NoError(t, e.ExecuteTrade(context.Background(), testSignal(market.Call, 75), cfg))
	settle(e, "c1", -1.00)
	assert.Equal(t, StateCooldown, e.State())

	e.Reset()

	assert.Equal(t, StateIdle, e.State())
	assert.Zero(t, clk.Pending(), "cooldown timer cancelled")
	s := e.GetStats()
	assert.Zero(t, s.Trades)
	assert.Zero(t, s.ConsecutiveLosses)
	assert.Zero(t, s.Net)
	assert.Len(t, e.GetHistory(), 1, "history survives reset")

	e.ClearHistory()
	assert.Empty(t, e.GetHistory())
}
