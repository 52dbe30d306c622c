package ports

import (
	"context"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

// Geocoder resolves a free-text place name to a coordinate. Implementations
// fold every failure mode — no match, transport error, decode error — into
// domain.ErrNotFound and never retry.
type Geocoder interface {
	Resolve(ctx context.Context, label string) (domain.Coordinate, error)
}

// RouteFetcher requests a driving route between two coordinates. A missing
// route and any transport or decode failure both surface as
// domain.ErrNotFound.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error)
}

// Locator determines the caller's position from its network address when no
// device fix was supplied. Failure surfaces as domain.ErrLocationUnavailable.
type Locator interface {
	Locate(ctx context.Context, ip string) (domain.Coordinate, error)
}
