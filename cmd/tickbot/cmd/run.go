package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/tickbot/broker/ws"
	"github.com/rustyeddy/tickbot/config"
	"github.com/rustyeddy/tickbot/engine"
	"github.com/rustyeddy/tickbot/events"
	"github.com/rustyeddy/tickbot/journal"
	"github.com/rustyeddy/tickbot/market"
	"github.com/rustyeddy/tickbot/metrics"
	"github.com/rustyeddy/tickbot/signal"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live trading session from a config file",
	Long: `Connect to the broker, stream ticks for the configured symbol and trade the
configured contract until a session limit halts trading or the process is
interrupted.

The API token is read from the DERIV_TOKEN environment variable unless set in
the config file.

Example:
  tickbot run -f examples/configs/even-odd.yaml`,
	RunE: runRun,
}

var (
	runConfigPath  string
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	token := cfg.Broker.Token
	if token == "" {
		token = os.Getenv("DERIV_TOKEN")
	}
	if token == "" {
		return fmt.Errorf("no API token: set broker.token or DERIV_TOKEN")
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	j, err := newJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	if runMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(runMetricsAddr, mux); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	bus := events.NewBus()
	eventCh := bus.Subscribe()

	reconnectDelay, _ := cfg.Broker.ParseReconnectDelay()
	client := ws.New(ws.Options{
		URL:               cfg.Broker.URL,
		ReconnectAttempts: cfg.Broker.ReconnectAttempts,
		ReconnectDelay:    reconnectDelay,
		Logger:            log.With().Str("component", "ws").Logger(),
		Emitter:           bus,
		Metrics:           met,
	})
	defer client.Close()

	eng := engine.New(client, engine.Options{
		Journal: j,
		Emitter: bus,
		Metrics: met,
		Logger:  log.With().Str("component", "engine").Logger(),
		Policy:  signal.DefaultPolicy(),
	})
	eng.Bind()

	ctx := context.Background()
	auth, err := client.Connect(ctx, token)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Printf("Connected as %s (balance %.2f %s)\n", auth.LoginID, auth.Balance, auth.Currency)

	if err := client.SubscribeTicks(ctx, cfg.Trading.Symbol); err != nil {
		return fmt.Errorf("subscribe %s: %w", cfg.Trading.Symbol, err)
	}

	engCfg, err := toEngineConfig(cfg.Trading)
	if err != nil {
		return err
	}
	eng.Start(engCfg)
	fmt.Printf("Trading %s %s, stake %.2f %s\n",
		cfg.Trading.Symbol, cfg.Trading.Contract, cfg.Trading.Stake, cfg.Trading.Currency)

	sig := make(chan os.Signal, 1)
	ossignal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			fmt.Println("\nInterrupted, stopping")
			eng.Stop()
			printStats(eng.GetStats())
			return nil
		case ev := <-eventCh:
			switch ev.Type {
			case events.TradeSettled:
				fmt.Printf("%-6s %s  stake %.2f  profit %+.2f\n",
					ev.Outcome, ev.Contract, ev.Stake, ev.Profit)
			case events.Halted:
				fmt.Printf("Session halted: %s (net %+.2f)\n", ev.Reason, ev.Profit)
				printStats(eng.GetStats())
				return nil
			case events.Reconnected:
				fmt.Println("Reconnected to broker")
			}
		}
	}
}

func toEngineConfig(t config.TradingConfig) (engine.Config, error) {
	tradeDelay, err := t.ParseTradeDelay()
	if err != nil {
		return engine.Config{}, err
	}
	cooldown, err := t.ParseCooldown()
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Symbol:             t.Symbol,
		Contract:           market.ContractType(t.Contract),
		Barrier:            t.Barrier,
		Stake:              t.Stake,
		Currency:           t.Currency,
		Duration:           t.Duration,
		DurationUnit:       t.DurationUnit,
		Martingale:         t.Martingale,
		ContractsPerSignal: t.ContractsPerSignal,
		TradeDelay:         tradeDelay,
		Cooldown:           cooldown,
		TakeProfit:         t.TakeProfit,
		StopLoss:           t.StopLoss,
	}, nil
}

func newJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.SessionsFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

func newLogger(lc config.LogConfig) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if lc.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(lc.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
		}
	}

	var w = os.Stderr
	if lc.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger(), nil
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func printStats(s engine.Stats) {
	fmt.Printf("\nSession summary:\n")
	fmt.Printf("  Trades: %d (%d wins / %d losses, %.1f%% win rate)\n",
		s.Trades, s.Wins, s.Losses, s.WinRate)
	fmt.Printf("  Best streak: %d\n", s.BestStreak)
	fmt.Printf("  Profit: %+.2f  Loss: %+.2f  Net: %+.2f\n",
		s.SessionProfit, s.SessionLoss, s.Net)
}
