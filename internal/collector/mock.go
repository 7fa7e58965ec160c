package collector

import (
	"context"
	"strings"
	"time"

	"TariffSentinel/internal/model"
)

// mockZPN is the account identifier the mock pretends to serve.
const mockZPN = "AT001000001"

// MockFetcher returns controllable fixed data for development and testing.
// Unset fields fall back to generated demo data.
type MockFetcher struct {
	Moments    map[string]*model.TimePoint
	Forecasts  map[string][]model.TimePoint
	Units      map[string]string
	Discovered []model.SeriesInfo
	Errs       map[string]error
	LowCode    float64
	HighCode   float64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) codes() (low, high float64) {
	low, high = m.LowCode, m.HighCode
	if low == 0 {
		low = 1
	}
	if high == 0 {
		high = 2
	}
	return low, high
}

func (m *MockFetcher) FetchMoment(_ context.Context, series string) (*model.TimePoint, string, error) {
	if err := m.Errs[series]; err != nil {
		return nil, "", err
	}
	if p, ok := m.Moments[series]; ok {
		return p, m.Units[series], nil
	}
	points := m.generateForecast(series, 1)
	return &points[0], m.Units[series], nil
}

func (m *MockFetcher) FetchForecast(_ context.Context, series string, hours int) ([]model.TimePoint, string, error) {
	if err := m.Errs[series]; err != nil {
		return nil, "", err
	}
	if pts, ok := m.Forecasts[series]; ok {
		return pts, m.Units[series], nil
	}
	return m.generateForecast(series, hours), m.Units[series], nil
}

func (m *MockFetcher) Discover(_ context.Context) ([]model.SeriesInfo, error) {
	if err := m.Errs["discover"]; err != nil {
		return nil, err
	}
	if m.Discovered != nil {
		return m.Discovered, nil
	}
	return []model.SeriesInfo{
		{ID: "101", Name: prefixSignal + "-" + mockZPN},
		{ID: "102", Name: prefixGridPrice + "-" + mockZPN, Unit: "EUR/kWh"},
		{ID: "103", Name: prefixEnergyPublic, Unit: "EUR/kWh"},
		{ID: "104", Name: prefixEnergyPublic + "-fee", Unit: "EUR/kWh"},
		{ID: "105", Name: prefixEnergyPublic + "-vat", Unit: "EUR/kWh"},
	}, nil
}

// generateForecast produces quarter-hour points. Signal series alternate
// three hours of standard tariff with two hours of sun window; price series
// hold small fixed values.
func (m *MockFetcher) generateForecast(series string, hours int) []model.TimePoint {
	low, high := m.codes()
	anchor := time.Now().Truncate(15 * time.Minute)
	count := hours * 4
	if count < 1 {
		count = 1
	}
	points := make([]model.TimePoint, count)
	for i := 0; i < count; i++ {
		var v float64
		if strings.Contains(series, prefixSignal) {
			if i%20 < 12 {
				v = high
			} else {
				v = low
			}
		} else {
			v = 0.0842
		}
		val := v
		points[i] = model.TimePoint{
			Value: &val,
			Time:  anchor.Add(time.Duration(i) * 15 * time.Minute),
		}
	}
	return points
}
