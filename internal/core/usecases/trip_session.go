package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/core/ports"
	"github.com/jharkhandtours/tripfinder/internal/pkg/metrics"
)

// TripSession owns one client's trip state: the from/to endpoints, the
// fetched route, and the recent-search history. It is long-lived for the
// session's duration and has no terminal state.
//
// All mutation goes through the session's mutex. Resolution attempts are
// tagged with a monotonically increasing sequence number; a completion whose
// number is no longer the latest issued is discarded instead of overwriting
// newer state.
type TripSession struct {
	id string

	geocoder ports.Geocoder
	routes   ports.RouteFetcher
	locator  ports.Locator
	views    ports.ViewPublisher
	renderer *MapSync
	history  *SearchHistory

	ratePerKm float64

	mu      sync.Mutex
	state   domain.TripState
	seq     uint64
	version uint64
}

// SessionDeps bundles the collaborators a session drives.
type SessionDeps struct {
	Geocoder  ports.Geocoder
	Routes    ports.RouteFetcher
	Locator   ports.Locator
	Views     ports.ViewPublisher
	Renderer  *MapSync
	RatePerKm float64
}

// NewTripSession creates an idle session.
func NewTripSession(id string, deps SessionDeps) *TripSession {
	return &TripSession{
		id:        id,
		geocoder:  deps.Geocoder,
		routes:    deps.Routes,
		locator:   deps.Locator,
		views:     deps.Views,
		renderer:  deps.Renderer,
		history:   NewSearchHistory(nil),
		ratePerKm: deps.RatePerKm,
	}
}

// Snapshot is a read-only copy of the session's current trip, with the
// derived distance and fare when a route is present.
type Snapshot struct {
	From       *domain.Endpoint    `json:"from,omitempty"`
	To         *domain.Endpoint    `json:"to,omitempty"`
	Route      *domain.RouteResult `json:"route,omitempty"`
	DistanceKm *float64            `json:"distance_km,omitempty"`
	Price      *float64            `json:"price,omitempty"`
	Version    uint64              `json:"version"`
}

// Search resolves both labels and, when both succeed, commits them as the new
// trip, records the pair in history, and kicks off a route fetch. Empty
// labels are rejected before any outbound call. If either label fails to
// resolve the prior trip state is left untouched.
func (s *TripSession) Search(ctx context.Context, fromLabel, toLabel string) (Snapshot, error) {
	fromLabel = strings.TrimSpace(fromLabel)
	toLabel = strings.TrimSpace(toLabel)
	if fromLabel == "" || toLabel == "" {
		metrics.SearchesTotal.WithLabelValues("validation").Inc()
		return s.Snapshot(), fmt.Errorf("%w: pick-up and drop-off are both required", domain.ErrValidation)
	}

	s.mu.Lock()
	s.seq++
	attempt := s.seq
	// A previously captured fix answers the sentinel without a lookup.
	var cachedFix *domain.Coordinate
	if fromLabel == domain.CurrentLocationLabel && s.state.From != nil &&
		s.state.From.Label == domain.CurrentLocationLabel && s.state.From.Coord != nil {
		c := *s.state.From.Coord
		cachedFix = &c
	}
	s.mu.Unlock()

	fromCoord, toCoord, err := s.resolvePair(ctx, fromLabel, toLabel, cachedFix)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("not_resolved").Inc()
		return s.Snapshot(), err
	}

	s.mu.Lock()
	if attempt != s.seq {
		s.mu.Unlock()
		metrics.StaleResultsDiscarded.Inc()
		return s.Snapshot(), domain.ErrStale
	}
	s.state = domain.TripState{
		From: &domain.Endpoint{Label: fromLabel, Coord: &fromCoord},
		To:   &domain.Endpoint{Label: toLabel, Coord: &toCoord},
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.history.Record(fromLabel, toLabel)
	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	s.publishView(ctx)
	s.publishSearch(ctx, fromLabel, toLabel)
	go s.fetchRoute(context.WithoutCancel(ctx), attempt, fromCoord, toCoord)

	return snap, nil
}

// SelectPlace sets the destination to a catalog place. The coordinate is
// already known, so this never touches the network and never fails; the
// origin is left as it is.
func (s *TripSession) SelectPlace(ctx context.Context, place domain.PointOfInterest) Snapshot {
	s.mu.Lock()
	s.seq++
	attempt := s.seq
	coord := place.Coord
	s.state.To = &domain.Endpoint{Label: place.Name, Coord: &coord}
	s.state.Route = nil
	s.version++
	var from *domain.Coordinate
	if s.state.From.Resolved() {
		c := *s.state.From.Coord
		from = &c
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publishView(ctx)
	if from != nil {
		go s.fetchRoute(context.WithoutCancel(ctx), attempt, *from, coord)
	}
	return snap
}

// UseCurrentLocation captures the caller's position as the origin and clears
// the destination: a fresh one must be chosen. fix is the device's own
// reading when the client supplied one; otherwise the locator resolves ip.
// On failure the prior state is untouched.
func (s *TripSession) UseCurrentLocation(ctx context.Context, fix *domain.Coordinate, ip string) (Snapshot, error) {
	if fix == nil {
		if s.locator == nil {
			return s.Snapshot(), domain.ErrLocationUnavailable
		}
		c, err := s.locator.Locate(ctx, ip)
		if err != nil {
			return s.Snapshot(), domain.ErrLocationUnavailable
		}
		fix = &c
	}
	if !fix.Valid() {
		return s.Snapshot(), domain.ErrLocationUnavailable
	}

	s.mu.Lock()
	s.seq++
	coord := *fix
	s.state = domain.TripState{
		From: &domain.Endpoint{Label: domain.CurrentLocationLabel, Coord: &coord},
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publishView(ctx)
	return snap, nil
}

// ReplayHistory re-runs a past search. Labels are re-resolved from scratch;
// coordinates are never trusted from history. Unlike Search, a resolution
// failure clears both coordinates so the new labels are never paired with
// stale positions.
func (s *TripSession) ReplayHistory(ctx context.Context, entry domain.HistoryEntry) (Snapshot, error) {
	if strings.TrimSpace(entry.From) == "" || strings.TrimSpace(entry.To) == "" {
		return s.Snapshot(), fmt.Errorf("%w: history entry has empty labels", domain.ErrValidation)
	}

	s.mu.Lock()
	s.seq++
	attempt := s.seq
	s.mu.Unlock()

	fromCoord, toCoord, err := s.resolvePair(ctx, entry.From, entry.To, nil)

	s.mu.Lock()
	if attempt != s.seq {
		s.mu.Unlock()
		metrics.StaleResultsDiscarded.Inc()
		return s.Snapshot(), domain.ErrStale
	}
	if err != nil {
		s.state = domain.TripState{
			From: &domain.Endpoint{Label: entry.From},
			To:   &domain.Endpoint{Label: entry.To},
		}
		s.version++
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publishView(ctx)
		return snap, err
	}
	s.state = domain.TripState{
		From: &domain.Endpoint{Label: entry.From, Coord: &fromCoord},
		To:   &domain.Endpoint{Label: entry.To, Coord: &toCoord},
	}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publishView(ctx)
	go s.fetchRoute(context.WithoutCancel(ctx), attempt, fromCoord, toCoord)
	return snap, nil
}

// History returns the recent searches, newest first.
func (s *TripSession) History() []domain.HistoryEntry {
	return s.history.Entries()
}

// ClearHistory empties the history. The current trip is unaffected.
func (s *TripSession) ClearHistory() {
	s.history.Clear()
}

// Snapshot returns a copy of the current trip state.
func (s *TripSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// MapView renders the current state as one map frame.
func (s *TripSession) MapView() domain.MapView {
	s.mu.Lock()
	state := s.state
	version := s.version
	s.mu.Unlock()
	return s.renderer.Render(state, version)
}

// resolvePair geocodes both labels concurrently. A cached fix, when given,
// answers the origin without a lookup. Either failure collapses into
// ErrNotResolved; callers decide what that does to state.
func (s *TripSession) resolvePair(ctx context.Context, fromLabel, toLabel string, cachedFix *domain.Coordinate) (domain.Coordinate, domain.Coordinate, error) {
	var (
		wg             sync.WaitGroup
		from, to       domain.Coordinate
		fromErr, toErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if cachedFix != nil {
			from = *cachedFix
			return
		}
		from, fromErr = s.geocoder.Resolve(ctx, fromLabel)
	}()
	go func() {
		defer wg.Done()
		to, toErr = s.geocoder.Resolve(ctx, toLabel)
	}()
	wg.Wait()

	if fromErr != nil || toErr != nil {
		slog.Debug("geocode failed",
			"session", s.id, "from", fromLabel, "to", toLabel,
			"from_err", fromErr, "to_err", toErr)
		return domain.Coordinate{}, domain.Coordinate{}, domain.ErrNotResolved
	}
	return from, to, nil
}

// fetchRoute requests the route for a committed endpoint pair. A missing
// route is a normal outcome: the trip keeps two markers and no line. The
// result is dropped when a newer attempt has been issued meanwhile.
func (s *TripSession) fetchRoute(ctx context.Context, attempt uint64, from, to domain.Coordinate) {
	route, err := s.routes.FetchRoute(ctx, from, to)
	if err != nil {
		metrics.RouteFetches.WithLabelValues("unavailable").Inc()
		slog.Debug("no route available", "session", s.id)
		return
	}

	s.mu.Lock()
	if attempt != s.seq {
		s.mu.Unlock()
		metrics.StaleResultsDiscarded.Inc()
		metrics.RouteFetches.WithLabelValues("stale").Inc()
		return
	}
	s.state.Route = route
	s.version++
	s.mu.Unlock()

	metrics.RouteFetches.WithLabelValues("ok").Inc()
	s.publishView(ctx)
}

func (s *TripSession) snapshotLocked() Snapshot {
	snap := Snapshot{Version: s.version}
	if s.state.From != nil {
		e := *s.state.From
		snap.From = &e
	}
	if s.state.To != nil {
		e := *s.state.To
		snap.To = &e
	}
	if s.state.Route != nil {
		r := *s.state.Route
		snap.Route = &r
		dist := r.DistanceKm
		price := domain.EstimatedPrice(dist, s.ratePerKm)
		snap.DistanceKm = &dist
		snap.Price = &price
	}
	return snap
}

func (s *TripSession) publishView(ctx context.Context) {
	if s.views == nil {
		return
	}
	if err := s.views.PublishMapView(ctx, s.id, s.MapView()); err != nil {
		slog.Warn("map view publish failed", "session", s.id, "error", err)
	}
}

func (s *TripSession) publishSearch(ctx context.Context, fromLabel, toLabel string) {
	if s.views == nil {
		return
	}
	if err := s.views.PublishSearch(ctx, s.id, fromLabel, toLabel); err != nil {
		slog.Warn("search event publish failed", "session", s.id, "error", err)
	}
}

// SessionManager hands out one TripSession per session ID, creating them on
// demand. Sessions live for the process lifetime; nothing is persisted.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*TripSession
	deps     SessionDeps
}

// NewSessionManager creates an empty manager.
func NewSessionManager(deps SessionDeps) *SessionManager {
	return &SessionManager{sessions: make(map[string]*TripSession), deps: deps}
}

// Get returns the session for id, creating it if needed. An empty id maps to
// the default session.
func (m *SessionManager) Get(id string) *TripSession {
	if id == "" {
		id = "default"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewTripSession(id, m.deps)
	m.sessions[id] = s
	return s
}
