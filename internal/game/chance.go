package game

import (
	"math/rand"
	"sync"
)

// Chance abstracts the random source behind level auto-adjustment so tests
// can pin outcomes.
type Chance interface {
	// Roll returns true with probability p.
	Roll(p float64) bool
}

type randChance struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandChance(seed int64) Chance {
	return &randChance{rng: rand.New(rand.NewSource(seed))}
}

func (c *randChance) Roll(p float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Float64() < p
}
