package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"TariffSentinel/internal/model"
	"TariffSentinel/internal/version"
)

// StatusError reports a non-200 response from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// InnonetFetcher implements Fetcher against the INNOnet TSM REST API.
type InnonetFetcher struct {
	BaseURL string
	APIKey  string
	Step    int // moment-window granularity in minutes
	Client  *http.Client
}

// NewInnonetFetcher creates a fetcher for one account's API key.
func NewInnonetFetcher(baseURL, apiKey string, step int, timeout time.Duration) *InnonetFetcher {
	return &InnonetFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Step:    step,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (f *InnonetFetcher) Name() string { return "innonet" }

// seriesURL builds the data endpoint for a series. The query string uses the
// HAKOM TSM calendar syntax: "now[15m" anchors to the preceding quarter-hour
// boundary and the "+" of the upper bound must be sent percent-encoded, so the
// query is assembled by hand instead of through url.Values.
func (f *InnonetFetcher) seriesURL(series, query string) string {
	return fmt.Sprintf("%s/%s/timeseries/%s/data?%s",
		f.BaseURL, url.PathEscape(f.APIKey), url.PathEscape(series), query)
}

func (f *InnonetFetcher) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("innonet fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("innonet read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

// FetchMoment requests the single point covering the current moment window.
func (f *InnonetFetcher) FetchMoment(ctx context.Context, series string) (*model.TimePoint, string, error) {
	query := fmt.Sprintf(
		"from=now[%dm&to=now[%dm%%2B%dm&interval=Minute&intervalMultiplier=%d&aggregation=AtTheMoment",
		f.Step, f.Step, f.Step, f.Step)
	body, err := f.get(ctx, f.seriesURL(series, query))
	if err != nil {
		return nil, "", err
	}
	points, unit, _ := normalizePoints(body)
	if len(points) == 0 {
		return nil, unit, nil
	}
	return &points[0], unit, nil
}

// FetchForecast requests the forward series up to the horizon in hours.
func (f *InnonetFetcher) FetchForecast(ctx context.Context, series string, hours int) ([]model.TimePoint, string, error) {
	query := fmt.Sprintf(
		"from=now[%dm&to=now[%dm%%2B%dh&interval=Minute&intervalMultiplier=%d&aggregation=AtTheMoment",
		f.Step, f.Step, hours, f.Step)
	body, err := f.get(ctx, f.seriesURL(series, query))
	if err != nil {
		return nil, "", err
	}
	points, unit, _ := normalizePoints(body)
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, unit, nil
}

// Discover lists the series selected for the account's API key.
func (f *InnonetFetcher) Discover(ctx context.Context) ([]model.SeriesInfo, error) {
	fullURL := fmt.Sprintf("%s/%s/timeseriescollections/selected-data?from=today&to=today%%2B1d",
		f.BaseURL, url.PathEscape(f.APIKey))
	body, err := f.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	items, _, _ := decodeEnvelope(body)
	infos := make([]model.SeriesInfo, 0, len(items))
	for _, item := range items {
		name := lookupString(item, "name")
		if name == "" {
			continue
		}
		infos = append(infos, model.SeriesInfo{
			ID:   itemID(item),
			Name: name,
			Unit: lookupString(item, "unit"),
		})
	}
	return infos, nil
}

// ValidateKey checks that the API key grants access to at least one selected
// series. Used at startup to fail fast on a bad key.
func (f *InnonetFetcher) ValidateKey(ctx context.Context) error {
	items, err := f.Discover(ctx)
	if err != nil {
		return fmt.Errorf("validate api key: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("validate api key: no series selected for this key")
	}
	return nil
}

// itemID reads the discovery item id, which arrives as either a string or a
// bare number depending on the response variant.
func itemID(item map[string]any) string {
	switch v, _ := lookupFold(item, "id"); id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
