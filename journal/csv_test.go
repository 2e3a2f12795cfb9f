package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRecordTrade(t *testing.T) {
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	sessionsPath := filepath.Join(dir, "sessions.csv")

	j, err := NewCSV(tradesPath, sessionsPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:   "t1",
		Symbol:    "R_100",
		Contract:  "DIGITDIFF",
		Stake:     0.35,
		Profit:    0.03,
		Outcome:   "WIN",
		OpenTime:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		CloseTime: time.Date(2024, 3, 1, 9, 0, 5, 0, time.UTC),
	}))
	require.NoError(t, j.RecordSession(SessionSnapshot{Time: time.Now(), Wins: 1, Net: 0.03}))
	require.NoError(t, j.Close())

	tf, err := os.Open(tradesPath)
	require.NoError(t, err)
	defer tf.Close()

	rows, err := csv.NewReader(tf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one trade
	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, "t1", rows[1][0])
	assert.Equal(t, "DIGITDIFF", rows[1][2])
	assert.Equal(t, "WIN", rows[1][5])
}

func TestNopJournal(t *testing.T) {
	var j Journal = Nop{}
	assert.NoError(t, j.RecordTrade(TradeRecord{}))
	assert.NoError(t, j.RecordSession(SessionSnapshot{}))
	assert.NoError(t, j.Close())
}
