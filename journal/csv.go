package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	trades   *csv.Writer
	sessions *csv.Writer
	tf, sf   *os.File
}

func NewCSV(tradesPath, sessionsPath string) (*CSV, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(sessionsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	sw := csv.NewWriter(sf)

	if err := tw.Write([]string{"trade_id", "symbol", "contract", "stake", "profit", "outcome", "open_time", "close_time"}); err != nil {
		return nil, err
	}
	if err := sw.Write([]string{"time", "wins", "losses", "consecutive_losses", "session_profit", "session_loss", "net"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}

	return &CSV{trades: tw, sessions: sw, tf: tf, sf: sf}, nil
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Symbol,
		t.Contract,
		f(t.Stake),
		f(t.Profit),
		t.Outcome,
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordSession(s SessionSnapshot) error {
	err := j.sessions.Write([]string{
		s.Time.Format(time.RFC3339),
		strconv.Itoa(s.Wins),
		strconv.Itoa(s.Losses),
		strconv.Itoa(s.ConsecutiveLosses),
		f(s.SessionProfit),
		f(s.SessionLoss),
		f(s.Net),
	})
	if err != nil {
		return err
	}
	j.sessions.Flush()
	return j.sessions.Error()
}

func (j *CSV) Close() error {
	j.trades.Flush()
	j.sessions.Flush()
	if err := j.tf.Close(); err != nil {
		j.sf.Close()
		return err
	}
	return j.sf.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
