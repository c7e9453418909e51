// Package id generates ULID identifiers for runs and trades. ULIDs sort
// lexicographically by time, so journal rows and SQLite indexes stay in
// chronological order for free.
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

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so the entropy half is unpredictable;
	// ulid.Monotonic keeps same-millisecond IDs strictly increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID stamped with the wall clock. Used for run IDs.
func New() string {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID stamped with the given time. Trade IDs use the bar
// timestamp so a trade's ID sorts with the simulated timeline it belongs
// to, not with when the backtest happened to run.
func NewAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Only possible if the timestamp overflows or entropy fails.
		panic(err)
	}
	return id.String()
}
