// Package geocode resolves spoken course references to coordinates using
// the OSM Nominatim search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// ErrNoResults means the query geocoded to nothing.
var ErrNoResults = errors.New("geocode: no results")

// Client queries Nominatim. The zero value is not usable; use [NewClient].
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the Nominatim endpoint. Tests point this at a
// local server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an identifying agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient constructs a Client with a 10-second request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  "ai-golf-caddie/1.0",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Course geocodes a course or location string to (lat, lon). It takes the
// first Nominatim result and returns [ErrNoResults] when there is none.
func (c *Client) Course(ctx context.Context, query string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug("geocoding course", "query", query)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode: unexpected status %s", resp.Status)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("%w for query %q", ErrNoResults, query)
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode: bad longitude %q: %w", results[0].Lon, err)
	}
	c.log.Debug("geocoded course", "lat", lat, "lon", lon)
	return lat, lon, nil
}

var (
	spaceRe       = regexp.MustCompile(`\s+`)
	firstTeeOfRe  = regexp.MustCompile(`(?i)\bfirst tee of\s+(.+)`)
	atRe          = regexp.MustCompile(`(?i)\bat\s+(.+)`)
	requestTailRe = regexp.MustCompile(`(?i)please|give me|weather|report|conditions|what are|today|now|current`)
)

// ExtractCourseName pulls a likely course name out of an utterance, e.g.
// "I'm on the first tee of Finchley Golf Club, what's the weather" yields
// "Finchley Golf Club". Preference order: "first tee of", then "at", then
// "of"; the whole text is the last resort.
func ExtractCourseName(transcript string) string {
	text := spaceRe.ReplaceAllString(strings.TrimSpace(transcript), " ")

	candidate := text
	if m := firstTeeOfRe.FindStringSubmatchIndex(text); m != nil {
		candidate = text[m[2]:]
	} else if m := atRe.FindStringSubmatchIndex(text); m != nil {
		candidate = text[m[2]:]
	} else if idx := strings.Index(strings.ToLower(text), " of "); idx != -1 {
		candidate = text[idx+4:]
	}

	// Drop the request tail: "..., please give me a weather report".
	if loc := requestTailRe.FindStringIndex(candidate); loc != nil {
		candidate = candidate[:loc[0]]
	}
	return strings.TrimSpace(strings.Trim(candidate, " .,!?"))
}
