package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, contract, stake, profit, outcome, open_time, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Contract, t.Stake,
		t.Profit, t.Outcome, t.OpenTime, t.CloseTime,
	)
	return err
}

func (j *SQLite) RecordSession(s SessionSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO sessions
		(time, wins, losses, consecutive_losses, session_profit, session_loss, net)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Time, s.Wins, s.Losses, s.ConsecutiveLosses,
		s.SessionProfit, s.SessionLoss, s.Net,
	)
	return err
}

// ListTrades returns every recorded trade, oldest settlement first.
func (j *SQLite) ListTrades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, contract, stake, profit, outcome, open_time, close_time
		FROM trades
		ORDER BY close_time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Symbol,
			&rec.Contract,
			&rec.Stake,
			&rec.Profit,
			&rec.Outcome,
			&rec.OpenTime,
			&rec.CloseTime,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetTrade returns a single trade record by id.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT trade_id, symbol, contract, stake, profit, outcome, open_time, close_time
		FROM trades
		WHERE trade_id = ?`, tradeID)

	err := row.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Contract,
		&rec.Stake,
		&rec.Profit,
		&rec.Outcome,
		&rec.OpenTime,
		&rec.CloseTime,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
