package domain

import "errors"

var (
	// ErrNotFound is returned by the geocoding and routing boundaries for
	// "no match" and for any transport or decode failure: callers treat an
	// unreachable service and an unknown place identically.
	ErrNotFound = errors.New("not found")

	// ErrValidation rejects a request before any outbound call is made.
	ErrValidation = errors.New("validation failed")

	// ErrNotResolved means one or both labels could not be geocoded.
	ErrNotResolved = errors.New("locations not found")

	// ErrLocationUnavailable means the caller's position could not be
	// determined (denied or no fix).
	ErrLocationUnavailable = errors.New("current location unavailable")

	// ErrStale marks a resolution attempt that was superseded by a newer
	// one before it could commit.
	ErrStale = errors.New("superseded by a newer search")

	// ErrUnknownPlace is returned for a point-of-interest ID that is not in
	// the catalog.
	ErrUnknownPlace = errors.New("unknown place")
)
