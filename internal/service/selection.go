package service

import (
	"math/rand/v2"
	"sync"
)

// Picker chooses which stored event to present.
type Picker interface {
	// Pick returns an index in [0, n). n is always positive.
	Pick(n int) int
}

// UniformPicker picks every index with equal probability. Picks are
// independent: no memory of earlier results.
type UniformPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformPicker seeds from the runtime's random source.
func NewUniformPicker() *UniformPicker {
	return &UniformPicker{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeededPicker is deterministic for a given seed pair.
func NewSeededPicker(seed1, seed2 uint64) *UniformPicker {
	return &UniformPicker{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Pick implements Picker.
func (p *UniformPicker) Pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}
