// Package metrics exposes engine activity counters for Prometheus scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Set bundles the engine's instruments. Construct one per engine with an
// isolated registerer in tests.
type Set struct {
	Ticks      prometheus.Counter
	Signals    prometheus.Counter
	Trades     prometheus.Counter
	Wins       prometheus.Counter
	Losses     prometheus.Counter
	Reconnects prometheus.Counter
	SessionNet prometheus.Gauge
}

// New creates and registers the instrument set. A nil registerer leaves the
// instruments unregistered, which is convenient for tests.
func New(reg prometheus.Registerer) *Set {
	s := &Set{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_ticks_total",
			Help: "Price ticks processed.",
		}),
		Signals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_signals_total",
			Help: "Trade signals generated.",
		}),
		Trades: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_trades_total",
			Help: "Contracts submitted to the broker.",
		}),
		Wins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_wins_total",
			Help: "Contracts settled with positive profit.",
		}),
		Losses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_losses_total",
			Help: "Contracts settled with zero or negative profit.",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tickbot_reconnects_total",
			Help: "Successful websocket reconnections.",
		}),
		SessionNet: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tickbot_session_net",
			Help: "Net session profit/loss.",
		}),
	}

	if reg != nil {
		reg.MustRegister(s.Ticks, s.Signals, s.Trades, s.Wins, s.Losses, s.Reconnects, s.SessionNet)
	}
	return s
}
