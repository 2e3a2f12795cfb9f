package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteRecordAndGetTrade(t *testing.T) {
	j := tempSQLite(t)

	rec := TradeRecord{
		TradeID:   "01HTEST",
		Symbol:    "R_100",
		Contract:  "DIGITODD",
		Stake:     1.50,
		Profit:    1.42,
		Outcome:   "WIN",
		OpenTime:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		CloseTime: time.Date(2024, 3, 1, 10, 0, 5, 0, time.UTC),
	}
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("01HTEST")
	require.NoError(t, err)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Contract, got.Contract)
	assert.Equal(t, rec.Profit, got.Profit)
	assert.Equal(t, rec.Outcome, got.Outcome)
}

func TestSQLiteGetTradeMissing(t *testing.T) {
	j := tempSQLite(t)
	_, err := j.GetTrade("nope")
	assert.Error(t, err)
}

func TestSQLiteListTradesOrdered(t *testing.T) {
	j := tempSQLite(t)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "a", "c"} {
		require.NoError(t, j.RecordTrade(TradeRecord{
			TradeID:   id,
			Symbol:    "R_50",
			Contract:  "CALL",
			Stake:     1,
			Profit:    -1,
			Outcome:   "LOSS",
			OpenTime:  base,
			CloseTime: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	trades, err := j.ListTrades()
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "b", trades[0].TradeID, "ordered by settlement time")
	assert.Equal(t, "c", trades[2].TradeID)
}

func TestSQLiteRecordSession(t *testing.T) {
	j := tempSQLite(t)
	assert.NoError(t, j.RecordSession(SessionSnapshot{
		Time:          time.Now().UTC(),
		Wins:          3,
		Losses:        2,
		SessionProfit: 4.2,
		SessionLoss:   -2.0,
		Net:           2.2,
	}))
}
