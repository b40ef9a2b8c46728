package oracle

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Per-symbol base prices in cents for the simulated feed; symbols without
// an entry start at defaultBasePrice.
var basePrices = map[string]int64{
	"AAPL":  15000,
	"GOOGL": 280000,
	"MSFT":  30000,
	"TSLA":  80000,
	"AMZN":  320000,
}

const defaultBasePrice = 10000

// maxStepCents bounds a single random-walk step to ±$5.00.
const maxStepCents = 500

// Simulator is a random-walk price feed. ReferencePrice is a stable read
// of the last observation; NextPrice advances the walk one step.
type Simulator struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	last map[string]int64
}

// NewSimulator creates a Simulator seeded for reproducibility.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{
		rnd:  rand.New(rand.NewSource(seed)),
		last: make(map[string]int64),
	}
}

// ReferencePrice returns the symbol's current simulated price without
// advancing the walk.
func (s *Simulator) ReferencePrice(_ context.Context, symbol string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Quote{Symbol: symbol, Price: s.currentLocked(symbol), At: time.Now()}
}

// NextPrice advances the symbol's walk one step and returns the new quote.
func (s *Simulator) NextPrice(_ context.Context, symbol string) Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.currentLocked(symbol)
	step := int64((s.rnd.Float64() - 0.5) * 2 * maxStepCents)
	price += step
	if price < 1 {
		price = 1
	}
	s.last[symbol] = price
	return Quote{Symbol: symbol, Price: price, At: time.Now()}
}

// SetPrice pins the symbol's current price. Used to anchor the walk to the
// last live observation and by tests.
func (s *Simulator) SetPrice(symbol string, cents int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[symbol] = cents
}

func (s *Simulator) currentLocked(symbol string) int64 {
	if p, ok := s.last[symbol]; ok {
		return p
	}
	base, ok := basePrices[symbol]
	if !ok {
		base = defaultBasePrice
	}
	s.last[symbol] = base
	return base
}
