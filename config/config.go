package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tickbot/market"
)

// Config is the complete bot configuration.
type Config struct {
	Broker  BrokerConfig  `json:"broker" yaml:"broker"`
	Trading TradingConfig `json:"trading" yaml:"trading"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// BrokerConfig contains the websocket endpoint and credentials.
type BrokerConfig struct {
	URL               string `json:"url" yaml:"url"`
	Token             string `json:"token,omitempty" yaml:"token,omitempty"`
	ReconnectAttempts int    `json:"reconnect_attempts,omitempty" yaml:"reconnect_attempts,omitempty"`
	ReconnectDelay    string `json:"reconnect_delay,omitempty" yaml:"reconnect_delay,omitempty"` // e.g. "3s"
}

// TradingConfig contains the trade policy.
type TradingConfig struct {
	Symbol             string  `json:"symbol" yaml:"symbol"`
	Contract           string  `json:"contract" yaml:"contract"`
	Barrier            int     `json:"barrier,omitempty" yaml:"barrier,omitempty"`
	Stake              float64 `json:"stake" yaml:"stake"`
	Currency           string  `json:"currency" yaml:"currency"`
	Duration           int     `json:"duration" yaml:"duration"`
	DurationUnit       string  `json:"duration_unit" yaml:"duration_unit"`
	Martingale         float64 `json:"martingale,omitempty" yaml:"martingale,omitempty"`
	ContractsPerSignal int     `json:"contracts_per_signal,omitempty" yaml:"contracts_per_signal,omitempty"`
	TradeDelay         string  `json:"trade_delay,omitempty" yaml:"trade_delay,omitempty"` // e.g. "500ms"
	Cooldown           string  `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`       // e.g. "30s"
	TakeProfit         float64 `json:"take_profit,omitempty" yaml:"take_profit,omitempty"`
	StopLoss           float64 `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"`
}

// JournalConfig contains trade journaling parameters.
type JournalConfig struct {
	Type         string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile   string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	SessionsFile string `json:"sessions_file,omitempty" yaml:"sessions_file,omitempty"`
	DBPath       string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"` // debug, info, warn, error
	Pretty bool   `json:"pretty,omitempty" yaml:"pretty,omitempty"`
}

// Default returns a configuration with sensible demo values.
func Default() *Config {
	return &Config{
		Broker: BrokerConfig{
			URL:               "wss://ws.derivws.com/websockets/v3?app_id=1089",
			ReconnectAttempts: 5,
			ReconnectDelay:    "3s",
		},
		Trading: TradingConfig{
			Symbol:             "R_100",
			Contract:           "DIGITEVEN",
			Stake:              0.35,
			Currency:           "USD",
			Duration:           1,
			DurationUnit:       "t",
			Martingale:         1.5,
			ContractsPerSignal: 1,
			Cooldown:           "30s",
			TakeProfit:         10,
			StopLoss:           5,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "tickbot.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON based on content).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format chosen by extension).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Broker.URL == "" {
		return fmt.Errorf("broker.url is required")
	}
	if _, err := c.Broker.ParseReconnectDelay(); err != nil {
		return fmt.Errorf("broker.reconnect_delay: %w", err)
	}

	ct := market.ContractType(c.Trading.Contract)
	if market.FamilyOf(ct) == market.FamilyUnknown {
		return fmt.Errorf("unknown contract type: %s", c.Trading.Contract)
	}
	if market.NeedsBarrier(ct) && (c.Trading.Barrier < 0 || c.Trading.Barrier > 9) {
		return fmt.Errorf("trading.barrier must be a digit 0-9 for %s", c.Trading.Contract)
	}
	if c.Trading.Symbol == "" {
		return fmt.Errorf("trading.symbol is required")
	}
	if c.Trading.Stake <= 0 {
		return fmt.Errorf("trading.stake must be positive")
	}
	if c.Trading.Currency == "" {
		return fmt.Errorf("trading.currency is required")
	}
	if c.Trading.Duration <= 0 {
		return fmt.Errorf("trading.duration must be positive")
	}
	if c.Trading.DurationUnit == "" {
		return fmt.Errorf("trading.duration_unit is required")
	}
	if c.Trading.Martingale < 0 {
		return fmt.Errorf("trading.martingale must not be negative")
	}
	if c.Trading.TakeProfit < 0 || c.Trading.StopLoss < 0 {
		return fmt.Errorf("trading take_profit and stop_loss must not be negative")
	}
	if _, err := c.Trading.ParseTradeDelay(); err != nil {
		return fmt.Errorf("trading.trade_delay: %w", err)
	}
	if _, err := c.Trading.ParseCooldown(); err != nil {
		return fmt.Errorf("trading.cooldown: %w", err)
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.SessionsFile == "" {
			return fmt.Errorf("journal trades_file and sessions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "none", "":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}

	return nil
}

// ParseReconnectDelay converts the delay string to a duration.
func (b BrokerConfig) ParseReconnectDelay() (time.Duration, error) {
	return parseDelay(b.ReconnectDelay)
}

// ParseTradeDelay converts the intra-batch delay string to a duration.
func (t TradingConfig) ParseTradeDelay() (time.Duration, error) {
	return parseDelay(t.TradeDelay)
}

// ParseCooldown converts the cooldown string to a duration.
func (t TradingConfig) ParseCooldown() (time.Duration, error) {
	return parseDelay(t.Cooldown)
}

func parseDelay(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
