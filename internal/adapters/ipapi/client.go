// Package ipapi implements ports.Locator against ip-api.com, used as the
// device-position fallback when a client cannot or will not share a
// geolocation fix.
//
// API docs: https://ip-api.com/docs/api:json
package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

const defaultBaseURL = "http://ip-api.com"

type lookupResponse struct {
	Status  string  `json:"status"` // "success" | "fail"
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Client geolocates a caller by network address.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a locator client. baseURL may be empty for the public
// ip-api instance.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// Locate returns the coordinate for ip. Private and unparseable addresses,
// upstream "fail" statuses, and transport errors all surface as
// domain.ErrLocationUnavailable; the caller's prior state stays untouched.
func (c *Client) Locate(ctx context.Context, ip string) (domain.Coordinate, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || addr.IsPrivate() || addr.IsLoopback() {
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}

	u := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon", c.baseURL, addr.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("ip geolocation request failed", "error", err)
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Warn("ip geolocation decode failed", "error", err)
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}
	if body.Status != "success" {
		slog.Debug("ip geolocation refused", "message", body.Message)
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}

	coord := domain.Coordinate{Lat: body.Lat, Lon: body.Lon}
	if !coord.Valid() {
		return domain.Coordinate{}, domain.ErrLocationUnavailable
	}
	return coord, nil
}
