package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"TariffSentinel/internal/analyzer"
	"TariffSentinel/internal/collector"
	"TariffSentinel/internal/guard"
	"TariffSentinel/internal/metrics"
	"TariffSentinel/internal/model"
	"TariffSentinel/internal/scheduler"
	"TariffSentinel/internal/store"
)

// ErrEmptyCycle is returned when a refresh yields no usable series and no
// previous snapshot exists to fall back to.
var ErrEmptyCycle = errors.New("refresh produced no usable series")

var errUnresolved = errors.New("series name not resolved")

// Options carries the per-account tuning for a Coordinator.
type Options struct {
	AccountID    string
	LowCode      float64
	HorizonHours int
	Margin       time.Duration
}

// Coordinator runs refresh cycles: resolve series names, fetch the moment
// values and the signal forecast, guard the readings, derive the low-tariff
// window and swap in a new snapshot. One cycle runs at a time; every trigger
// funnels through Refresh.
type Coordinator struct {
	fetcher collector.Fetcher
	guard   *guard.Guard
	store   store.Store
	metrics *metrics.Registry

	accountID string
	lowCode   float64
	horizon   int
	margin    time.Duration

	refreshMu sync.Mutex

	mu       sync.RWMutex
	names    map[model.SeriesKey]string
	snapshot *model.Snapshot
	state    model.CycleState
	outcome  model.CycleOutcome
	lastErr  error

	wake *scheduler.Wakeup

	// OnUpdate, when set, receives a copy of every installed snapshot. Called
	// outside the coordinator's locks.
	OnUpdate func(*model.Snapshot)
}

// New creates a Coordinator, seeding the name map from the store.
func New(f collector.Fetcher, g *guard.Guard, st store.Store, reg *metrics.Registry, opts Options) *Coordinator {
	c := &Coordinator{
		fetcher:   f,
		guard:     g,
		store:     st,
		metrics:   reg,
		accountID: opts.AccountID,
		lowCode:   opts.LowCode,
		horizon:   opts.HorizonHours,
		margin:    opts.Margin,
		names:     make(map[model.SeriesKey]string),
		state:     model.StateIdle,
		outcome:   model.OutcomeNone,
	}
	if names, err := st.LoadNames(); err != nil {
		logrus.Warnf("load persisted series names: %v", err)
	} else {
		for k, v := range names {
			c.names[k] = v
		}
	}
	c.wake = scheduler.NewWakeup(c.preciseRefresh)
	return c
}

// Refresh runs one full cycle and returns the resulting snapshot. When no
// series yields data the previous snapshot is returned unchanged with a nil
// error; without one the cycle fails with ErrEmptyCycle. Concurrent callers
// serialize, they never run cycles in parallel.
func (c *Coordinator) Refresh(ctx context.Context, trigger model.Trigger) (*model.Snapshot, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	start := time.Now()
	c.setState(model.StateFetching)
	defer c.setState(model.StateIdle)

	logrus.Infof("refresh cycle started (trigger=%s, fetcher=%s)", trigger, c.fetcher.Name())

	names := c.resolveNames(ctx)
	results := c.fetchAll(ctx, names)

	usable := 0
	for i := range results {
		if results[i].OK() {
			usable++
		}
	}
	if usable == 0 {
		return c.finishFailed(start, results)
	}

	snap, stale := c.buildSnapshot(trigger, results)
	c.install(snap)

	c.metrics.StaleSubstituted(stale)
	c.metrics.CycleFinished(time.Since(start), false)
	logrus.Infof("refresh cycle %s finished: %d/%d series usable, %d stale, window active=%t",
		snap.CycleID, usable, len(results), stale, snap.Window.Active)

	if c.OnUpdate != nil {
		c.OnUpdate(snap.Clone())
	}
	return snap, nil
}

// Snapshot returns a deep copy of the latest snapshot, or nil before the
// first completed cycle.
func (c *Coordinator) Snapshot() *model.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// State reports the coordinator's position in the refresh cycle.
func (c *Coordinator) State() model.CycleState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LastOutcome reports how the most recent cycle ended, with its error if any.
func (c *Coordinator) LastOutcome() (model.CycleOutcome, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outcome, c.lastErr
}

// Names returns a copy of the resolved upstream series names.
func (c *Coordinator) Names() map[model.SeriesKey]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make(map[model.SeriesKey]string, len(c.names))
	for k, v := range c.names {
		names[k] = v
	}
	return names
}

// NextWakeup returns the armed precise wake instant, ok=false when disarmed.
func (c *Coordinator) NextWakeup() (time.Time, bool) {
	return c.wake.Target()
}

// Close disarms the precise wakeup timer.
func (c *Coordinator) Close() {
	c.wake.Cancel()
}

func (c *Coordinator) preciseRefresh() {
	c.metrics.WakeupFired()
	logrus.Info("precise wakeup fired at window transition")
	if _, err := c.Refresh(context.Background(), model.TriggerPrecise); err != nil {
		logrus.Errorf("precise refresh: %v", err)
	}
}

// resolveNames returns the upstream name for every logical series. Resolved
// names stick and are persisted; keys still unresolved after discovery fall
// back to a per-cycle guess where one exists.
func (c *Coordinator) resolveNames(ctx context.Context) map[model.SeriesKey]string {
	names := c.Names()

	missing := false
	for _, key := range model.AllKeys() {
		if names[key] == "" {
			missing = true
			break
		}
	}

	if missing {
		c.metrics.DiscoveryRan()
		items, err := c.fetcher.Discover(ctx)
		if err != nil {
			logrus.Warnf("series discovery failed: %v", err)
		} else {
			discovered := collector.Classify(items)
			c.mu.Lock()
			for key, name := range discovered {
				if c.names[key] != "" {
					continue
				}
				c.names[key] = name
				names[key] = name
				logrus.Infof("resolved series %s -> %s", key, name)
				if err := c.store.SaveName(key, name); err != nil {
					logrus.Errorf("persist name for %s: %v", key, err)
				}
			}
			c.mu.Unlock()
		}
	}

	// Guesses are never persisted; a later discovery replaces them.
	for _, key := range model.AllKeys() {
		if names[key] != "" {
			continue
		}
		if guess, ok := collector.FallbackName(key, c.accountID); ok {
			names[key] = guess
		}
	}
	return names
}

// fetchAll fetches the moment value for every series and the forecast for the
// signal, sequentially. A failed series degrades that reading, never the
// cycle.
func (c *Coordinator) fetchAll(ctx context.Context, names map[model.SeriesKey]string) []model.SeriesResult {
	keys := model.AllKeys()
	results := make([]model.SeriesResult, 0, len(keys))
	for _, key := range keys {
		name := names[key]
		if name == "" {
			logrus.Warnf("series %s has no upstream name yet, skipping fetch", key)
			results = append(results, model.SeriesResult{Key: key, Err: errUnresolved})
			continue
		}

		r := model.SeriesResult{Key: key, Name: name}
		if key == model.KeySignal {
			point, unit, perr := c.fetcher.FetchMoment(ctx, name)
			points, funit, ferr := c.fetcher.FetchForecast(ctx, name, c.horizon)
			r.Point, r.Unit, r.Points = point, unit, points
			if r.Unit == "" {
				r.Unit = funit
			}
			switch {
			case perr != nil && ferr != nil:
				r.Err = perr
			case perr != nil:
				logrus.Warnf("signal moment fetch failed, forecast only: %v", perr)
			case ferr != nil:
				logrus.Warnf("signal forecast fetch failed: %v", ferr)
			}
		} else {
			r.Point, r.Unit, r.Err = c.fetcher.FetchMoment(ctx, name)
		}

		if r.Err != nil {
			logrus.Warnf("series %s (%s) fetch failed: %v", key, name, r.Err)
		} else if r.Empty() {
			logrus.Warnf("series %s (%s) returned no data", key, name)
		}
		results = append(results, r)
	}
	return results
}

// buildSnapshot guards every reading and derives the window and total price.
// Returns the snapshot and the number of stale substitutions.
func (c *Coordinator) buildSnapshot(trigger model.Trigger, results []model.SeriesResult) (*model.Snapshot, int) {
	now := time.Now()
	snap := &model.Snapshot{
		CycleID:   uuid.New().String(),
		Trigger:   trigger,
		UpdatedAt: now,
		Readings:  make(map[model.SeriesKey]model.Reading, len(results)),
	}

	stale := 0
	var forecast []model.TimePoint
	for i := range results {
		r := &results[i]
		if r.Key == model.KeySignal {
			forecast = r.Points
		}

		value, wasStale := c.guard.Apply(r.Key, momentValue(r))
		if wasStale {
			stale++
		}
		snap.Readings[r.Key] = model.Reading{
			Key:   r.Key,
			Name:  r.Name,
			Value: value,
			Unit:  r.Unit,
			Stale: wasStale,
			At:    now,
		}
	}

	snap.Window = analyzer.AnalyzeWindow(forecast, c.lowCode)
	if total, ok := analyzer.TotalPrice(snap.Readings); ok {
		snap.TotalPrice = total
	}
	return snap, stale
}

// install swaps in the new snapshot and re-arms or cancels the precise wakeup
// in the same critical section, so readers never observe a snapshot whose
// transition timer is still the old one.
func (c *Coordinator) install(snap *model.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = snap
	c.outcome = model.OutcomeSucceeded
	c.lastErr = nil

	if next, ok := snap.Window.NextTransition(snap.UpdatedAt); ok {
		at := next.Add(c.margin)
		c.wake.Arm(at)
		logrus.Infof("precise wakeup armed for %s (transition %s + %s margin)",
			at.Format(time.RFC3339), next.Format(time.RFC3339), c.margin)
	} else {
		c.wake.Cancel()
	}
}

// finishFailed handles a cycle with zero usable series: keep serving the
// previous snapshot when one exists, otherwise surface the failure.
func (c *Coordinator) finishFailed(start time.Time, results []model.SeriesResult) (*model.Snapshot, error) {
	err := firstError(results)
	c.metrics.CycleFinished(time.Since(start), true)

	c.mu.Lock()
	prev := c.snapshot
	if prev != nil {
		c.outcome = model.OutcomeFallback
	}
	c.lastErr = err
	c.mu.Unlock()

	if prev != nil {
		c.metrics.FallbackServed()
		logrus.Warnf("refresh yielded no usable series, keeping snapshot %s: %v", prev.CycleID, err)
		return prev, nil
	}
	if err == nil {
		return nil, ErrEmptyCycle
	}
	return nil, fmt.Errorf("%w: %v", ErrEmptyCycle, err)
}

func (c *Coordinator) setState(s model.CycleState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// momentValue extracts the usable fresh value from a fetched series, or nil
// when the fetch failed, carried no point, or the point is flagged missing.
func momentValue(r *model.SeriesResult) *float64 {
	if r.Err != nil || r.Point == nil {
		return nil
	}
	if r.Point.Flag != nil && *r.Point.Flag == model.FlagMissing {
		return nil
	}
	return r.Point.Value
}

func firstError(results []model.SeriesResult) error {
	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}
	return nil
}
