package wallet

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDReferences produces references of the form TX-<ULID>: a millisecond
// timestamp followed by 80 bits of crypto randomness, monotonic within one
// generator.
type ULIDReferences struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewULIDReferences() *ULIDReferences {
	return &ULIDReferences{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

func (g *ULIDReferences) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := ulid.Timestamp(g.now())
	id, err := ulid.New(ms, g.entropy)
	if err != nil {
		// Monotonic entropy exhausted within one millisecond.
		id = ulid.MustNew(ms, rand.Reader)
	}
	return ReferencePrefix + id.String()
}
