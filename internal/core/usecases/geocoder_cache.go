package usecases

import (
	"context"
	"encoding/json"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/core/ports"
	"github.com/jharkhandtours/tripfinder/internal/pkg/metrics"
)

// geocodeCacheTTL is how long a resolved label stays cached, in seconds.
// Place coordinates drift rarely; an hour keeps us polite to the upstream.
const geocodeCacheTTL = 3600

// CachedGeocoder wraps a Geocoder with a read-through cache. Cache failures
// are ignored; only successful resolutions are cached, so a transient
// NotFound never shadows a later successful lookup.
type CachedGeocoder struct {
	next  ports.Geocoder
	cache ports.CacheService
}

// NewCachedGeocoder wraps next. cache may be nil, which disables caching.
func NewCachedGeocoder(next ports.Geocoder, cache ports.CacheService) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache}
}

// Resolve implements ports.Geocoder.
func (g *CachedGeocoder) Resolve(ctx context.Context, label string) (domain.Coordinate, error) {
	key := "geocode:" + label
	if g.cache != nil {
		if data, err := g.cache.Get(ctx, key); err == nil {
			var coord domain.Coordinate
			if err := json.Unmarshal(data, &coord); err == nil && coord.Valid() {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return coord, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	coord, err := g.next.Resolve(ctx, label)
	if err != nil {
		return domain.Coordinate{}, err
	}

	if g.cache != nil {
		if data, err := json.Marshal(coord); err == nil {
			_ = g.cache.Set(ctx, key, data, geocodeCacheTTL)
		}
	}
	return coord, nil
}
