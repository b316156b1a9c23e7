package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// OrderNumbers produces human-readable order numbers: PREFIX + YYMMDD + "-" + NNNN.
type OrderNumbers struct {
	Prefix string
	Now    func() time.Time
	mu     sync.Mutex
	rnd    *rand.Rand
}

func NewOrderNumbers(prefix string) *OrderNumbers {
	return &OrderNumbers{
		Prefix: prefix,
		Now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns a fresh candidate. Uniqueness is enforced by the database.
func (g *OrderNumbers) Next() string {
	g.mu.Lock()
	n := g.rnd.Intn(10000)
	g.mu.Unlock()
	return fmt.Sprintf("%s%s-%04d", g.Prefix, g.Now().Format("060102"), n)
}

// Seed makes the sequence deterministic, for tests.
func (g *OrderNumbers) Seed(seed int64) {
	g.mu.Lock()
	g.rnd = rand.New(rand.NewSource(seed))
	g.mu.Unlock()
}
