// Package osrm implements ports.RouteFetcher against the project-osrm
// routing API.
//
// API docs: http://project-osrm.org/docs/v5.24.0/api/#route-service
// Sample request:
// https://router.project-osrm.org/route/v1/driving/85.33,23.35;85.4572,23.1895?overview=full&geometries=geojson
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/pkg/metrics"
)

const defaultBaseURL = "https://router.project-osrm.org"

// routeResponse is the subset of the OSRM route response we consume. The
// wire format is longitude-first everywhere; coordinates are flipped to the
// internal latitude-first convention on ingest.
type routeResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
	} `json:"routes"`
}

// Client fetches driving routes.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a routing client. baseURL may be empty for the public
// OSRM instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}

// FetchRoute requests the driving route between from and to and returns the
// first candidate with its distance in kilometres (two decimals) and its
// geometry flipped back to latitude-first order. No candidate, transport
// failure, and decode failure all surface as domain.ErrNotFound; routing
// trouble must never take the session down.
func (c *Client) FetchRoute(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error) {
	start := time.Now()
	route, err := c.fetchRoute(ctx, from, to)
	outcome := "ok"
	if err != nil {
		outcome = "not_found"
	}
	metrics.RouteRequests.WithLabelValues(outcome).Inc()
	metrics.RouteDuration.Observe(time.Since(start).Seconds())
	return route, err
}

func (c *Client) fetchRoute(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error) {
	// OSRM wants lon,lat pairs.
	u := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("route request failed", "error", err)
		return nil, domain.ErrNotFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("route returned non-200", "status", resp.StatusCode)
		return nil, domain.ErrNotFound
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Warn("route decode failed", "error", err)
		return nil, domain.ErrNotFound
	}
	if len(body.Routes) == 0 {
		return nil, domain.ErrNotFound
	}

	best := body.Routes[0]
	polyline := make([]domain.Coordinate, 0, len(best.Geometry.Coordinates))
	for _, pair := range best.Geometry.Coordinates {
		if len(pair) < 2 {
			slog.Warn("route geometry has malformed coordinate pair")
			return nil, domain.ErrNotFound
		}
		polyline = append(polyline, domain.Coordinate{Lat: pair[1], Lon: pair[0]})
	}

	return &domain.RouteResult{
		Polyline:   polyline,
		DistanceKm: domain.RoundKm(best.Distance / 1000),
	}, nil
}
