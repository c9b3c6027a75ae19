package bias

import (
	"sync"

	"github.com/selivandex/market-scanner/internal/classifier"
)

// Accumulator holds the running sentiment score per asset. Writes come from
// the scanner loop only; reads may come from the health endpoint, hence the
// mutex.
type Accumulator struct {
	mu     sync.RWMutex
	scores map[classifier.Asset]int
}

// NewAccumulator creates accumulator with every known asset at zero
func NewAccumulator() *Accumulator {
	scores := make(map[classifier.Asset]int)
	for _, asset := range classifier.Assets() {
		scores[asset] = 0
	}
	return &Accumulator{scores: scores}
}

// Add adds delta to the asset's running score. No bounds: the raw score is an
// unbounded sum, only the derived probability is clamped.
func (a *Accumulator) Add(asset classifier.Asset, delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scores[asset] += delta
}

// Score returns the asset's current score
func (a *Accumulator) Score(asset classifier.Asset) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.scores[asset]
}

// Snapshot returns a copy of all scores
func (a *Accumulator) Snapshot() map[classifier.Asset]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snapshot := make(map[classifier.Asset]int, len(a.scores))
	for asset, score := range a.scores {
		snapshot[asset] = score
	}
	return snapshot
}

// Restore overwrites scores from a persisted snapshot. Assets missing from
// the snapshot keep their zero default; unknown assets are dropped so stale
// state files load cleanly.
func (a *Accumulator) Restore(scores map[string]int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, asset := range classifier.Assets() {
		if score, ok := scores[string(asset)]; ok {
			a.scores[asset] = score
		}
	}
}
