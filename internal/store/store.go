package store

import "TariffSentinel/internal/model"

// Store persists the per-account state that must survive restarts: the last
// accepted non-zero value per logical series, and the resolved series names.
// Only current values are kept, never history.
type Store interface {
	LoadValues() (map[model.SeriesKey]float64, error)
	SaveValue(key model.SeriesKey, value float64) error
	LoadNames() (map[model.SeriesKey]string, error)
	SaveName(key model.SeriesKey, name string) error
	Close() error
}
