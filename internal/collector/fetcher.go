package collector

import (
	"context"

	"TariffSentinel/internal/model"
)

// Fetcher defines the interface for fetching tariff timeseries data.
type Fetcher interface {
	// FetchMoment returns the single point covering "now" for a series,
	// together with the unit string the response carried. A nil point with a
	// nil error means the upstream had no data for the series.
	FetchMoment(ctx context.Context, series string) (*model.TimePoint, string, error)
	// FetchForecast returns the ordered future points for a series up to the
	// given horizon in hours. Index 0 covers "now".
	FetchForecast(ctx context.Context, series string, hours int) ([]model.TimePoint, string, error)
	// Discover lists the series selected for the account's API key.
	Discover(ctx context.Context) ([]model.SeriesInfo, error)
	Name() string
}
