// Package nominatim implements ports.Geocoder against the OpenStreetMap
// Nominatim search API.
//
// API docs: https://nominatim.org/release-docs/develop/api/Search/
// Sample request: https://nominatim.openstreetmap.org/search?format=json&q=Ranchi
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/pkg/metrics"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// searchResult is one candidate in a Nominatim search response. Coordinates
// come back as numeric strings.
type searchResult struct {
	PlaceID     int    `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Client resolves free-text place names to coordinates.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a geocoding client. baseURL may be empty for the public
// Nominatim instance. userAgent identifies this service per the Nominatim
// usage policy.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// Resolve looks up the literal label and returns the first candidate's
// coordinate. No match, transport failure, and decode failure all collapse
// into domain.ErrNotFound: the caller treats "service unreachable" and "no
// such place" identically. Lookups are never retried.
func (c *Client) Resolve(ctx context.Context, label string) (domain.Coordinate, error) {
	start := time.Now()
	coord, err := c.resolve(ctx, label)
	outcome := "ok"
	if err != nil {
		outcome = "not_found"
	}
	metrics.GeocodeRequests.WithLabelValues(outcome).Inc()
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())
	return coord, err
}

func (c *Client) resolve(ctx context.Context, label string) (domain.Coordinate, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("format", "json")
	q.Set("q", label)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("geocode request failed", "label", label, "error", err)
		return domain.Coordinate{}, domain.ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("geocode returned non-200", "label", label, "status", resp.StatusCode)
		return domain.Coordinate{}, domain.ErrNotFound
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		slog.Warn("geocode decode failed", "label", label, "error", err)
		return domain.Coordinate{}, domain.ErrNotFound
	}
	if len(results) == 0 {
		return domain.Coordinate{}, domain.ErrNotFound
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		slog.Warn("geocode returned malformed coordinates", "label", label)
		return domain.Coordinate{}, domain.ErrNotFound
	}

	coord := domain.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return domain.Coordinate{}, domain.ErrNotFound
	}
	return coord, nil
}
