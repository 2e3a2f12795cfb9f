package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tickbot/broker"
)

func writeTicks(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func collect(t *testing.T, path string) []broker.TickEvent {
	t.Helper()
	var out []broker.TickEvent
	require.NoError(t, CSV(path, func(tk broker.TickEvent) error {
		out = append(out, tk)
		return nil
	}))
	return out
}

func TestCSVWithHeader(t *testing.T) {
	path := writeTicks(t, `time,symbol,quote
2026-01-24T09:30:00Z,R_100,1234.56
2026-01-24T09:30:02Z,R_100,1234.57
2026-01-24T09:30:04Z,R_100,1234.55
`)

	ticks := collect(t, path)
	require.Len(t, ticks, 3)
	assert.Equal(t, "R_100", ticks[0].Symbol)
	assert.Equal(t, 1234.56, ticks[0].Price)
	assert.Equal(t, 1234.55, ticks[2].Price)
	assert.Equal(t, ticks[0].Epoch+4, ticks[2].Epoch)
}

func TestCSVWithoutHeaderEpochSeconds(t *testing.T) {
	path := writeTicks(t, `1769247000,R_50,99.81
1769247002,R_50,99.83
`)

	ticks := collect(t, path)
	require.Len(t, ticks, 2)
	assert.Equal(t, int64(1769247000), ticks[0].Epoch)
	assert.Equal(t, 99.83, ticks[1].Price)
}

func TestCSVBadRow(t *testing.T) {
	path := writeTicks(t, `time,symbol,quote
2026-01-24T09:30:00Z,R_100,not-a-number
`)

	err := CSV(path, func(broker.TickEvent) error { return nil })
	assert.Error(t, err)
}

func TestCSVStopsOnEmitError(t *testing.T) {
	path := writeTicks(t, `time,symbol,quote
1769247000,R_100,100.1
1769247002,R_100,100.2
1769247004,R_100,100.3
`)

	stop := errors.New("stop")
	n := 0
	err := CSV(path, func(broker.TickEvent) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, n)
}

func TestCSVMissingFile(t *testing.T) {
	err := CSV(filepath.Join(t.TempDir(), "nope.csv"), func(broker.TickEvent) error { return nil })
	assert.Error(t, err)
}
