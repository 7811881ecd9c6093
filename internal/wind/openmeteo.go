package wind

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

	// fetchTimeout bounds a single weather request. Kept short: the caller
	// is mid-conversation and a stale cached answer beats a slow live one.
	fetchTimeout = 2 * time.Second
)

// OpenMeteo fetches current wind observations from the open-meteo forecast
// API. The zero value is not usable; construct with [NewOpenMeteo].
type OpenMeteo struct {
	baseURL    string
	httpClient *http.Client
}

// OpenMeteoOption is a functional option for configuring an [OpenMeteo].
type OpenMeteoOption func(*OpenMeteo)

// WithBaseURL overrides the API endpoint. Tests point this at an httptest
// server.
func WithBaseURL(u string) OpenMeteoOption {
	return func(o *OpenMeteo) { o.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) OpenMeteoOption {
	return func(o *OpenMeteo) { o.httpClient = c }
}

// NewOpenMeteo constructs an open-meteo [Fetcher] with a 2-second request
// timeout.
func NewOpenMeteo(opts ...OpenMeteoOption) *OpenMeteo {
	o := &OpenMeteo{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// currentResponse mirrors the subset of the open-meteo payload we read.
type currentResponse struct {
	Current struct {
		WindSpeed     float64 `json:"wind_speed_10m"`
		WindDirection float64 `json:"wind_direction_10m"`
	} `json:"current"`
}

// CurrentWind implements [Fetcher].
func (o *OpenMeteo) CurrentWind(ctx context.Context, lat, lon float64) (Observation, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "wind_speed_10m,wind_direction_10m")
	q.Set("wind_speed_unit", "ms")
	q.Set("timezone", "UTC")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Observation{}, fmt.Errorf("wind: build request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("wind: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Observation{}, fmt.Errorf("wind: unexpected status %s", resp.Status)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Observation{}, fmt.Errorf("wind: decode response: %w", err)
	}

	return Observation{
		SpeedMS:          payload.Current.WindSpeed,
		DirectionFromDeg: payload.Current.WindDirection,
	}, nil
}
