package http

import (
	"github.com/nats-io/nats.go"

	"github.com/jharkhandtours/tripfinder/internal/adapters/catalog"
	"github.com/jharkhandtours/tripfinder/internal/adapters/valkey"
	"github.com/jharkhandtours/tripfinder/internal/core/usecases"
)

// Dependencies holds everything the HTTP handlers need.
type Dependencies struct {
	Sessions *usecases.SessionManager
	Catalog  *catalog.Catalog
	MapSync  *usecases.MapSync
	NATS     *nats.Conn
	Cache    *valkey.Cache
	Currency string
}

// sessionIDHeader names the header clients use to pin their trip session.
// Absent or empty means the default session.
const sessionIDHeader = "X-Session-ID"
