package domain

// MarkerKind selects the icon a client should draw for a marker.
type MarkerKind string

const (
	MarkerPlace           MarkerKind = "place"            // catalog point of interest
	MarkerDefault         MarkerKind = "default"          // named trip endpoint
	MarkerCurrentLocation MarkerKind = "current_location" // the caller's own position
)

// MarkerPopup is the popup content bound to a marker. RouteToPlaceID carries
// the "route to here" action for catalog markers; clients feed it back as the
// destination intent.
type MarkerPopup struct {
	Title          string `json:"title"`
	Image          string `json:"image,omitempty"`
	Body           string `json:"body,omitempty"`
	RouteToPlaceID int    `json:"route_to_place_id,omitempty"`
	ExternalMapURL string `json:"external_map_url,omitempty"`
}

// Marker is a single pin on the map.
type Marker struct {
	ID       string      `json:"id"`
	Kind     MarkerKind  `json:"kind"`
	Position Coordinate  `json:"position"`
	Popup    MarkerPopup `json:"popup"`
}

// RouteOverlay is the drawn route line. Style is uniform for every route.
type RouteOverlay struct {
	Polyline []Coordinate `json:"polyline"`
	Color    string       `json:"color"`
	Weight   int          `json:"weight"`
	Opacity  float64      `json:"opacity"`
}

// ViewportMode selects how a client positions the map.
type ViewportMode string

const (
	ViewportCenter ViewportMode = "center" // center on a point at a fixed zoom
	ViewportFit    ViewportMode = "fit"    // fit a bounding box with padding
)

// Viewport instructs the client where to look.
type Viewport struct {
	Mode    ViewportMode `json:"mode"`
	Center  *Coordinate  `json:"center,omitempty"`
	Zoom    int          `json:"zoom,omitempty"`
	Bounds  *Bounds      `json:"bounds,omitempty"`
	Padding int          `json:"padding,omitempty"`
}

// MapView is one full frame of map state. Each frame replaces the previous
// one entirely; catalog markers live in the base layer and are not part of
// per-trip frames.
type MapView struct {
	Version    uint64        `json:"version"`
	Markers    []Marker      `json:"markers"`
	Route      *RouteOverlay `json:"route,omitempty"`
	Viewport   Viewport      `json:"viewport"`
	DistanceKm *float64      `json:"distance_km,omitempty"`
	Price      *float64      `json:"price,omitempty"`
}
