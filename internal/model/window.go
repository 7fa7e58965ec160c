package model

import "time"

// ForecastWindow describes the low-tariff ("sun") window derived from the
// signal forecast. Start and End are nil when no transition lies within the
// forecast horizon. Recomputed wholesale on every refresh.
type ForecastWindow struct {
	Active  bool       `json:"active"`
	Start   *time.Time `json:"start"`
	End     *time.Time `json:"end"`
	Current *TimePoint `json:"current"`
}

// NextTransition returns the earliest of Start/End that lies strictly after
// now, or ok=false when the horizon holds no upcoming transition.
func (w *ForecastWindow) NextTransition(now time.Time) (time.Time, bool) {
	var next time.Time
	var found bool
	for _, t := range []*time.Time{w.Start, w.End} {
		if t == nil || !t.After(now) {
			continue
		}
		if !found || t.Before(next) {
			next = *t
			found = true
		}
	}
	return next, found
}
