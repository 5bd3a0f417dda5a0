// Package id generates time-sortable identifiers for orders and audit
// records.
package id

import (
	cryptoRand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono = ulid.Monotonic(cryptoRand.Reader, 0)
)

// New returns a ULID string. IDs generated within the same millisecond
// remain lexicographically increasing, so order records sort by creation
// time.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}
