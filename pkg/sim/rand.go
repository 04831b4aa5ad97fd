package sim

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Rand is the random source used by the simulation.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// LockedRand is a seedable PCG source safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

var _ Rand = (*LockedRand)(nil)

// NewRand creates a random source. A zero seed picks one from the clock.
func NewRand(seed uint64) *LockedRand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &LockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *LockedRand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Between returns a uniform integer in [lo, hi]. Reversed bounds are swapped.
func Between(r Rand, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + r.IntN(hi-lo+1)
}
