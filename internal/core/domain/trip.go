package domain

import "math"

// Coordinate is a geographic point (WGS 84), latitude first.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate is finite and within range.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// CurrentLocationLabel is the sentinel label for the caller's own position.
const CurrentLocationLabel = "My Location"

// Endpoint is a named trip origin or destination. A nil Coord means the
// label has not been resolved to a coordinate yet.
type Endpoint struct {
	Label string      `json:"label"`
	Coord *Coordinate `json:"coord,omitempty"`
}

// Resolved reports whether the endpoint carries a coordinate.
func (e *Endpoint) Resolved() bool {
	return e != nil && e.Coord != nil
}

// RouteResult is a fetched driving route between two endpoints.
type RouteResult struct {
	Polyline   []Coordinate `json:"polyline"`
	DistanceKm float64      `json:"distance_km"`
}

// TripState is the session's current trip. Route is only present while both
// endpoints are resolved and is cleared whenever either coordinate changes.
type TripState struct {
	From  *Endpoint    `json:"from,omitempty"`
	To    *Endpoint    `json:"to,omitempty"`
	Route *RouteResult `json:"route,omitempty"`
}

// BothResolved reports whether origin and destination both have coordinates.
func (t TripState) BothResolved() bool {
	return t.From.Resolved() && t.To.Resolved()
}

// PointOfInterest is a fixed catalog place with pre-resolved coordinates.
type PointOfInterest struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Coord       Coordinate `json:"coord"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Category    Category   `json:"category"`
	Distance    *float64   `json:"distance,omitempty"` // computed field, meters
}

// Category classifies a point of interest.
type Category string

const (
	CategoryTribal  Category = "tribal"
	CategoryPopular Category = "popular"
)

// HistoryEntry records one past search by its labels. The (From, To) pair is
// the uniqueness key; Timestamp is display text, never part of the key.
type HistoryEntry struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Timestamp string `json:"timestamp"`
}

// RoundKm rounds a kilometre figure to two decimals, the precision quoted to
// the user and used by the fare.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// EstimatedPrice derives the fare from a distance at a fixed per-km rate,
// rounded to two decimals.
func EstimatedPrice(distanceKm, ratePerKm float64) float64 {
	return math.Round(distanceKm*ratePerKm*100) / 100
}
