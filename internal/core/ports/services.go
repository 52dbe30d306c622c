package ports

import (
	"context"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

// ViewPublisher pushes rendered map frames and trip events to a message
// broker for relay to connected clients.
type ViewPublisher interface {
	PublishMapView(ctx context.Context, sessionID string, view domain.MapView) error
	PublishSearch(ctx context.Context, sessionID, fromLabel, toLabel string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
