package app

import (
	"math/rand/v2"
	"sync"

	"github.com/transfa/banking-service/internal/domain"
)

// NumberGenerator produces the numeric body of new account numbers.
// Implementations must return values in [0, domain.AccountNumberBodyLimit).
type NumberGenerator interface {
	Next() int64
}

// RandomNumberGenerator draws bodies uniformly at random. Uniqueness is enforced
// by the account store, not by the generator.
type RandomNumberGenerator struct{}

func (RandomNumberGenerator) Next() int64 {
	return rand.Int64N(domain.AccountNumberBodyLimit)
}

// SequenceNumberGenerator replays a fixed list of bodies and then keeps
// returning the last one. It is meant for tests and fixtures.
type SequenceNumberGenerator struct {
	mu     sync.Mutex
	values []int64
	pos    int
}

func NewSequenceNumberGenerator(values ...int64) *SequenceNumberGenerator {
	return &SequenceNumberGenerator{values: values}
}

func (g *SequenceNumberGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.values) == 0 {
		return 0
	}
	v := g.values[g.pos]
	if g.pos < len(g.values)-1 {
		g.pos++
	}
	return v
}
