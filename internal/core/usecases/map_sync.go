package usecases

import (
	"fmt"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

// Map defaults, matched to the Jharkhand region the catalog covers.
var defaultCenter = domain.Coordinate{Lat: 23.6102, Lon: 85.2799}

const (
	defaultZoom       = 8
	fromOnlyZoom      = 13
	fitPadding        = 50
	routeColor        = "#000"
	routeWeight       = 4
	routeOpacity      = 0.7
	externalMapURLFmt = "https://www.google.com/maps?q=%g,%g"
)

// MapSync translates trip state into map render primitives. It never mutates
// trip state; it only reads snapshots. The catalog base layer is rendered
// once and is unaffected by trip changes.
type MapSync struct {
	catalog   []domain.PointOfInterest
	ratePerKm float64
}

// NewMapSync creates a renderer over the fixed place catalog.
func NewMapSync(catalog []domain.PointOfInterest, ratePerKm float64) *MapSync {
	return &MapSync{catalog: catalog, ratePerKm: ratePerKm}
}

// BaseLayer renders one marker per catalog place, each with a popup carrying
// the "route to here" action and an external map link. Clients draw this
// layer once at map init.
func (m *MapSync) BaseLayer() []domain.Marker {
	markers := make([]domain.Marker, 0, len(m.catalog))
	for _, p := range m.catalog {
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		markers = append(markers, domain.Marker{
			ID:       fmt.Sprintf("place-%d", p.ID),
			Kind:     domain.MarkerPlace,
			Position: p.Coord,
			Popup: domain.MarkerPopup{
				Title:          p.Name,
				Image:          image,
				Body:           p.Description,
				RouteToPlaceID: p.ID,
				ExternalMapURL: fmt.Sprintf(externalMapURLFmt, p.Coord.Lat, p.Coord.Lon),
			},
		})
	}
	return markers
}

// Render produces one full frame for the given trip state. Every frame
// replaces the previous one; there is no incremental diffing.
//
// Viewport rules: a route fits its own bounding box with fixed padding; both
// endpoints without a route fit the pair; origin alone centers close-in on
// the origin; otherwise the frame shows the regional default view.
func (m *MapSync) Render(state domain.TripState, version uint64) domain.MapView {
	view := domain.MapView{
		Version:  version,
		Markers:  []domain.Marker{},
		Viewport: domain.Viewport{Mode: domain.ViewportCenter, Center: &defaultCenter, Zoom: defaultZoom},
	}

	if state.From.Resolved() {
		kind := domain.MarkerDefault
		if state.From.Label == domain.CurrentLocationLabel {
			kind = domain.MarkerCurrentLocation
		}
		view.Markers = append(view.Markers, domain.Marker{
			ID:       "from",
			Kind:     kind,
			Position: *state.From.Coord,
			Popup:    domain.MarkerPopup{Title: "From: " + state.From.Label},
		})
	}
	if state.To.Resolved() {
		view.Markers = append(view.Markers, domain.Marker{
			ID:       "to",
			Kind:     domain.MarkerDefault,
			Position: *state.To.Coord,
			Popup:    domain.MarkerPopup{Title: "To: " + state.To.Label},
		})
	}

	switch {
	case state.BothResolved() && state.Route != nil:
		view.Route = &domain.RouteOverlay{
			Polyline: state.Route.Polyline,
			Color:    routeColor,
			Weight:   routeWeight,
			Opacity:  routeOpacity,
		}
		if b, ok := domain.LineBounds(state.Route.Polyline); ok {
			view.Viewport = domain.Viewport{Mode: domain.ViewportFit, Bounds: &b, Padding: fitPadding}
		}
		dist := state.Route.DistanceKm
		price := domain.EstimatedPrice(dist, m.ratePerKm)
		view.DistanceKm = &dist
		view.Price = &price

	case state.BothResolved():
		// Route absent or still in flight: two markers, fit the pair.
		if b, ok := domain.LineBounds([]domain.Coordinate{*state.From.Coord, *state.To.Coord}); ok {
			view.Viewport = domain.Viewport{Mode: domain.ViewportFit, Bounds: &b, Padding: fitPadding}
		}

	case state.From.Resolved():
		view.Viewport = domain.Viewport{Mode: domain.ViewportCenter, Center: state.From.Coord, Zoom: fromOnlyZoom}
	}

	return view
}
