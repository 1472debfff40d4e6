package games

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness source shared by all game engines. Engines take it
// as an explicit parameter so tests can seed deterministic sequences.
type Rand interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Shuffle applies a fair permutation using swap.
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}

// NewRand returns a time-seeded source safe for concurrent requests.
func NewRand() Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRand returns a deterministic source for tests.
func NewSeededRand(seed int64) Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}
