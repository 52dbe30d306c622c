// Package catalog holds the fixed point-of-interest catalog. The data is
// embedded at build time, loaded once at startup, and read-only afterwards.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/pkg/geospatial"
)

//go:embed places.json
var placesJSON []byte

// Catalog is the immutable set of catalog places.
type Catalog struct {
	places []domain.PointOfInterest
	byID   map[int]domain.PointOfInterest
}

// Load parses the embedded catalog. It fails only on a malformed embed,
// which is a build problem, not a runtime one.
func Load() (*Catalog, error) {
	var places []domain.PointOfInterest
	if err := json.Unmarshal(placesJSON, &places); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}

	byID := make(map[int]domain.PointOfInterest, len(places))
	for _, p := range places {
		if !p.Coord.Valid() {
			return nil, fmt.Errorf("catalog place %d has invalid coordinates", p.ID)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog place id %d appears twice", p.ID)
		}
		byID[p.ID] = p
	}
	return &Catalog{places: places, byID: byID}, nil
}

// All returns every place, optionally filtered by category. The returned
// slice is a copy; the catalog itself never changes.
func (c *Catalog) All(category domain.Category) []domain.PointOfInterest {
	out := make([]domain.PointOfInterest, 0, len(c.places))
	for _, p := range c.places {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ByID returns one place, or domain.ErrUnknownPlace.
func (c *Catalog) ByID(id int) (domain.PointOfInterest, error) {
	p, ok := c.byID[id]
	if !ok {
		return domain.PointOfInterest{}, domain.ErrUnknownPlace
	}
	return p, nil
}

// Near returns every place annotated with its great-circle distance in
// meters from the given point, nearest first.
func (c *Catalog) Near(from domain.Coordinate) []domain.PointOfInterest {
	out := make([]domain.PointOfInterest, len(c.places))
	copy(out, c.places)
	for i := range out {
		d := geospatial.Haversine(from.Lat, from.Lon, out[i].Coord.Lat, out[i].Coord.Lon)
		out[i].Distance = &d
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	return out
}
