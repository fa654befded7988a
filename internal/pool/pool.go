// Package pool holds the candidate identifiers the feed draws from and the
// set of identifiers already shown.
package pool

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abelbrown/artscroll/internal/catalog"
)

// Pool is a draw-without-replacement bag of candidate IDs.
// Thread-safety: all methods are safe for concurrent use.
// Invariant: no ID appears twice.
type Pool struct {
	mu  sync.Mutex
	ids []catalog.ItemID
	rng *rand.Rand
}

// New creates an empty pool seeded from the clock.
func New() *Pool {
	seed := uint64(time.Now().UnixNano())
	return NewWithRand(rand.New(rand.NewPCG(seed, seed>>1|1)))
}

// NewWithRand creates an empty pool using rng for draws (for testing).
func NewWithRand(rng *rand.Rand) *Pool {
	return &Pool{rng: rng}
}

// Draw removes and returns a uniformly random ID.
// Returns false when the pool is empty. Seen-filtering is the caller's job.
func (p *Pool) Draw() (catalog.ItemID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.ids)
	if n == 0 {
		return 0, false
	}
	i := p.rng.IntN(n)
	id := p.ids[i]
	// Swap-remove: order of the remaining candidates is irrelevant to a uniform draw.
	p.ids[i] = p.ids[n-1]
	p.ids = p.ids[:n-1]
	return id, true
}

// Refill replaces the pool with ids, the catalog's identifier universe as of
// the call. Duplicates within ids are dropped; the seen set is not consulted.
func (p *Pool) Refill(ids []catalog.ItemID) {
	fresh := make([]catalog.ItemID, 0, len(ids))
	present := make(map[catalog.ItemID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := present[id]; dup {
			continue
		}
		present[id] = struct{}{}
		fresh = append(fresh, id)
	}

	p.mu.Lock()
	p.ids = fresh
	p.mu.Unlock()
}

// Clear empties the pool.
func (p *Pool) Clear() {
	p.mu.Lock()
	p.ids = nil
	p.mu.Unlock()
}

// IsLow reports whether fewer than threshold IDs remain.
func (p *Pool) IsLow(threshold int) bool {
	return p.Size() < threshold
}

// Size returns the number of undrawn IDs.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}
