// Package nominatim provides place search against the OpenStreetMap
// Nominatim API for resolving station names to coordinates.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// Client resolves free-text place names to coordinates.
type Client interface {
	// Locate searches for a station by name. A nil error with
	// Matched=false means the service found nothing usable; a non-nil
	// error means the request itself failed.
	Locate(ctx context.Context, name string) (*Result, error)
}

// Result holds the best-guess coordinate for a query.
type Result struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Matched     bool
}

// Bounds is the validity box applied to results; anything outside it is
// reported as unmatched.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func (b Bounds) contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the Nominatim search endpoint.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit. Nominatim's fair-use
// policy allows at most one request per second.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithUserAgent sets the User-Agent header, which Nominatim requires to
// identify the calling application.
func WithUserAgent(ua string) Option {
	return func(c *client) { c.userAgent = ua }
}

// WithBounds overrides the result validity box.
func WithBounds(b Bounds) Option {
	return func(c *client) { c.bounds = b }
}

// WithQualifier sets the transit-system qualifier inserted into the
// primary query (e.g. "MTR"). The relaxed retry drops it.
func WithQualifier(q string) Option {
	return func(c *client) { c.qualifier = q }
}

// WithRegionHint sets the region appended to every query.
func WithRegionHint(region string) Option {
	return func(c *client) { c.region = region }
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	qualifier  string
	region     string
	bounds     Bounds
}

// NewClient creates a Nominatim client with Hong Kong defaults: one
// request per second, 10 second timeout, "MTR" qualifier.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
		userAgent:  "station-cli/1.0 (coordinate verification)",
		qualifier:  "MTR",
		region:     "Hong Kong",
		bounds:     Bounds{MinLat: 22.0, MaxLat: 23.0, MinLon: 113.0, MaxLon: 115.0},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Locate issues the primary query and, if it finds nothing, one relaxed
// retry with the transit-system qualifier removed. There is no automatic
// retry on transport failure; the pacing delay between calls is a
// fair-use contract, not an error-handling mechanism.
func (c *client) Locate(ctx context.Context, name string) (*Result, error) {
	query := fmt.Sprintf("%s %s station, %s", name, c.qualifier, c.region)
	result, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if result.Matched {
		return result, nil
	}

	relaxed := fmt.Sprintf("%s station, %s", name, c.region)
	result, err = c.search(ctx, relaxed)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// place is one candidate in the Nominatim response. Coordinates arrive
// as decimal-degree strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *client) search(ctx context.Context, query string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "nominatim: rate limit")
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: build request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("nominatim: status %d for query %q", resp.StatusCode, query)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: read body")
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, eris.Wrap(err, "nominatim: parse response")
	}
	if len(places) == 0 {
		return &Result{Matched: false}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lat")
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrap(err, "nominatim: parse lon")
	}

	if !c.bounds.contains(lat, lon) {
		zap.L().Debug("nominatim: result outside validity box, treating as unmatched",
			zap.String("query", query),
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
		)
		return &Result{Matched: false}, nil
	}

	return &Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: places[0].DisplayName,
		Matched:     true,
	}, nil
}
