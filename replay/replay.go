// Package replay streams recorded ticks from a CSV file, for dry-running the
// signal bank against historical data without touching the broker.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tickbot/broker"
)

// CSV reads ticks from a CSV file and hands each one to emit, in file order.
//
// CSV format, with or without a header row:
//
//	time,symbol,quote
//
// time is either RFC3339 or a unix epoch in seconds. Replay stops at the
// first error emit returns.
func CSV(csvPath string, emit func(broker.TickEvent) error) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	firstRow, err := r.Read()
	if err != nil {
		return err
	}

	hasHeader := len(firstRow) > 0 && strings.EqualFold(strings.TrimSpace(firstRow[0]), "time")
	if !hasHeader {
		if err := handleRow(firstRow, emit); err != nil {
			return err
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if err := handleRow(row, emit); err != nil {
			return err
		}
	}
}

func handleRow(row []string, emit func(broker.TickEvent) error) error {
	if len(row) < 3 {
		return fmt.Errorf("bad row (need 3 cols time,symbol,quote): %v", row)
	}

	epoch, err := parseTime(strings.TrimSpace(row[0]))
	if err != nil {
		return fmt.Errorf("bad time %q: %w", row[0], err)
	}

	symbol := strings.TrimSpace(row[1])
	if symbol == "" {
		return fmt.Errorf("empty symbol: %v", row)
	}

	quote, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return fmt.Errorf("bad quote %q: %w", row[2], err)
	}

	return emit(broker.TickEvent{Symbol: symbol, Price: quote, Epoch: epoch})
}

func parseTime(s string) (int64, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	return strconv.ParseInt(s, 10, 64)
}
