package model

import "time"

// SeriesKey identifies a logical series independent of its upstream name.
type SeriesKey string

const (
	KeySignal     SeriesKey = "signal"
	KeyGridPrice  SeriesKey = "grid-price"
	KeyEnergyBase SeriesKey = "energy-base"
	KeyEnergyFee  SeriesKey = "energy-fee"
	KeyEnergyVat  SeriesKey = "energy-vat"
)

// AllKeys returns every logical series fetched per refresh cycle.
func AllKeys() []SeriesKey {
	return []SeriesKey{KeySignal, KeyGridPrice, KeyEnergyBase, KeyEnergyFee, KeyEnergyVat}
}

// PriceKeys returns the monetary series keys.
func PriceKeys() []SeriesKey {
	return []SeriesKey{KeyGridPrice, KeyEnergyBase, KeyEnergyFee, KeyEnergyVat}
}

// ComponentKeys returns the public energy price components summed into the
// total price.
func ComponentKeys() []SeriesKey {
	return []SeriesKey{KeyEnergyBase, KeyEnergyFee, KeyEnergyVat}
}

// Trigger indicates what requested a refresh cycle.
type Trigger string

const (
	TriggerStartup  Trigger = "STARTUP"
	TriggerInterval Trigger = "INTERVAL"
	TriggerPrecise  Trigger = "PRECISE"
	TriggerManual   Trigger = "MANUAL"
)

// CycleState is the coordinator's position in a refresh cycle.
type CycleState string

const (
	StateIdle     CycleState = "idle"
	StateFetching CycleState = "fetching"
)

// CycleOutcome records how the most recent cycle ended.
type CycleOutcome string

const (
	OutcomeNone      CycleOutcome = "none"
	OutcomeSucceeded CycleOutcome = "succeeded"
	OutcomeFallback  CycleOutcome = "failed_with_fallback"
)

// Reading is one guarded output value. Stale is true when the stale-value
// guard substituted the last persisted value for a zero or missing reading.
type Reading struct {
	Key   SeriesKey `json:"key"`
	Name  string    `json:"name"`
	Value float64   `json:"value"`
	Unit  string    `json:"unit,omitempty"`
	Stale bool      `json:"stale"`
	At    time.Time `json:"at"`
}

// Snapshot is the immutable result of one refresh cycle. It is replaced
// wholesale after a cycle completes; readers never observe it half-built.
type Snapshot struct {
	CycleID    string                `json:"cycle_id"`
	Trigger    Trigger               `json:"trigger"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Readings   map[SeriesKey]Reading `json:"readings"`
	TotalPrice float64               `json:"total_price"`
	Window     ForecastWindow        `json:"window"`
}

// Clone returns a deep copy safe to hand to readers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Readings = make(map[SeriesKey]Reading, len(s.Readings))
	for k, v := range s.Readings {
		cp.Readings[k] = v
	}
	if s.Window.Start != nil {
		t := *s.Window.Start
		cp.Window.Start = &t
	}
	if s.Window.End != nil {
		t := *s.Window.End
		cp.Window.End = &t
	}
	if s.Window.Current != nil {
		p := *s.Window.Current
		if p.Value != nil {
			v := *p.Value
			p.Value = &v
		}
		if p.Flag != nil {
			f := *p.Flag
			p.Flag = &f
		}
		cp.Window.Current = &p
	}
	return &cp
}
