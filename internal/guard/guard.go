package guard

import (
	"sync"

	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/model"
	"TariffSentinel/internal/store"
)

// Guard retains the last accepted non-zero value per logical series and
// substitutes it when a fresh fetch yields a missing or exactly-zero reading.
// The upstream API intermittently reports zeros during data gaps; without the
// guard those would surface as "price is free" or "signal off".
type Guard struct {
	mu     sync.Mutex
	values map[model.SeriesKey]float64
	store  store.Store
}

// New creates a Guard, loading previously persisted values.
func New(st store.Store) (*Guard, error) {
	values, err := st.LoadValues()
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[model.SeriesKey]float64)
	}
	return &Guard{values: values, store: st}, nil
}

// Apply runs the stale-value rule for one series. A nil or exactly-zero fresh
// value returns the retained value (zero if none was ever accepted) without
// touching it; any other value is accepted, persisted and returned.
func (g *Guard) Apply(key model.SeriesKey, fresh *float64) (value float64, stale bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if fresh == nil || *fresh == 0 {
		return g.values[key], true
	}

	g.values[key] = *fresh
	if err := g.store.SaveValue(key, *fresh); err != nil {
		logrus.Errorf("persist value for %s: %v", key, err)
	}
	return *fresh, false
}

// Values returns a copy of the currently retained values.
func (g *Guard) Values() map[model.SeriesKey]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	values := make(map[model.SeriesKey]float64, len(g.values))
	for k, v := range g.values {
		values[k] = v
	}
	return values
}
