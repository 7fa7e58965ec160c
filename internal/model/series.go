package model

import "time"

// FlagMissing is the upstream quality flag marking a missing measurement.
const FlagMissing = 19

// TimePoint is a single normalized point of a timeseries.
type TimePoint struct {
	Value *float64  `json:"value"`
	Flag  *int      `json:"flag,omitempty"`
	Time  time.Time `json:"time"`
}

// SeriesInfo describes one timeseries returned by the discovery endpoint.
type SeriesInfo struct {
	ID   string
	Name string
	Unit string
}

// SeriesResult is the outcome of fetching one logical series in a refresh
// cycle. Exactly one of the failure modes applies: Err is set on transport or
// status errors; an empty Point/Points with nil Err means the upstream
// returned no data for the series.
type SeriesResult struct {
	Key    SeriesKey
	Name   string
	Point  *TimePoint
	Points []TimePoint
	Unit   string
	Err    error
}

// OK reports whether the fetch produced usable data.
func (r *SeriesResult) OK() bool {
	return r.Err == nil && (r.Point != nil || len(r.Points) > 0)
}

// Empty reports whether the fetch succeeded but carried no data.
func (r *SeriesResult) Empty() bool {
	return r.Err == nil && r.Point == nil && len(r.Points) == 0
}
