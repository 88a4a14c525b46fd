package random

import (
	"math/rand"
	"sync"
	"time"

	"github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// LockedSource implements the RandomSource interface with a seeded PRNG.
// math/rand sources are not safe for concurrent use, so draws are serialized.
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLockedSource creates a random source seeded from the current time
func NewLockedSource() core.RandomSource {
	return &LockedSource{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Intn returns a uniform random int in [0, n)
func (s *LockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
