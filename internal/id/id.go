// Package id mints ULID strings for signals and journal records.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator issues time-sortable ULID strings from its own monotonic entropy
// stream. Each scorer owns one, so ids minted within the same millisecond
// stay lexicographically ordered per session and generators never contend on
// a shared lock.
type Generator struct {
	mu   sync.Mutex
	mono io.Reader
}

// NewGenerator returns a generator seeded from crypto/rand.
func NewGenerator() *Generator {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{mono: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)}
}

// New returns the next ULID string.
//
// Signals and session records are journaled to SQLite; time-ordered ids keep
// those indexes naturally sorted.
func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), g.mono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}
