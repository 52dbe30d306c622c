package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jharkhandtours/tripfinder/internal/adapters/catalog"
	handler "github.com/jharkhandtours/tripfinder/internal/adapters/http"
	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/core/usecases"
)

// ---- Mock resolvers ----

type mockGeocoder struct {
	resolveFn func(ctx context.Context, label string) (domain.Coordinate, error)
}

func (m *mockGeocoder) Resolve(ctx context.Context, label string) (domain.Coordinate, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, label)
	}
	return domain.Coordinate{}, domain.ErrNotFound
}

type mockRouteFetcher struct {
	fetchFn func(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error)
}

func (m *mockRouteFetcher) FetchRoute(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, from, to)
	}
	return nil, domain.ErrNotFound
}

type mockLocator struct {
	locateFn func(ctx context.Context, ip string) (domain.Coordinate, error)
}

func (m *mockLocator) Locate(ctx context.Context, ip string) (domain.Coordinate, error) {
	if m.locateFn != nil {
		return m.locateFn(ctx, ip)
	}
	return domain.Coordinate{}, domain.ErrLocationUnavailable
}

// ---- Test helpers ----

var (
	ranchi = domain.Coordinate{Lat: 23.3441, Lon: 85.3096}
	dassam = domain.Coordinate{Lat: 23.1895, Lon: 85.4572}
)

func knownPlaces() *mockGeocoder {
	return &mockGeocoder{
		resolveFn: func(ctx context.Context, label string) (domain.Coordinate, error) {
			switch label {
			case "Ranchi":
				return ranchi, nil
			case "Dassam Falls":
				return dassam, nil
			}
			return domain.Coordinate{}, domain.ErrNotFound
		},
	}
}

func makeDeps(t *testing.T, opts ...func(*usecases.SessionDeps)) *handler.Dependencies {
	t.Helper()
	places, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	renderer := usecases.NewMapSync(places.All(""), 10)

	sd := usecases.SessionDeps{
		Geocoder: knownPlaces(),
		Routes: &mockRouteFetcher{
			fetchFn: func(ctx context.Context, from, to domain.Coordinate) (*domain.RouteResult, error) {
				return &domain.RouteResult{Polyline: []domain.Coordinate{from, to}, DistanceKm: 25.0}, nil
			},
		},
		Renderer:  renderer,
		RatePerKm: 10,
	}
	for _, o := range opts {
		o(&sd)
	}

	return &handler.Dependencies{
		Sessions: usecases.NewSessionManager(sd),
		Catalog:  places,
		MapSync:  renderer,
		Currency: "INR",
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Place handler tests ----

func TestListPlaces_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data       []domain.PointOfInterest `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Pagination.Total != 6 {
		t.Errorf("expected total 6, got %d", result.Pagination.Total)
	}
	if len(result.Data) != 6 {
		t.Errorf("expected 6 places, got %d", len(result.Data))
	}
}

func TestListPlaces_CategoryFilter(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places?category=tribal", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data []domain.PointOfInterest `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	for _, p := range result.Data {
		if p.Category != domain.CategoryTribal {
			t.Errorf("expected only tribal places, got %q", p.Category)
		}
	}
}

func TestListPlaces_InvalidCategory(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places?category=beaches", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListPlaces_NearSortsByDistance(t *testing.T) {
	app := setupApp(makeDeps(t))

	// From Ranchi the museum (in town) must come before Betla (far west).
	req := httptest.NewRequest("GET", "/v1/places?lat=23.3441&lon=85.3096", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data []domain.PointOfInterest `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) == 0 || result.Data[0].Distance == nil {
		t.Fatal("expected distance annotations")
	}
	for i := 1; i < len(result.Data); i++ {
		if *result.Data[i].Distance < *result.Data[i-1].Distance {
			t.Errorf("places not sorted by distance at index %d", i)
		}
	}
}

func TestListPlaces_Pagination(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places?offset=4&limit=4", nil)
	resp, _ := app.Test(req, -1)

	var result struct {
		Data       []domain.PointOfInterest `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 {
		t.Errorf("expected 2 places on the last page, got %d", len(result.Data))
	}
	if result.Pagination.Total != 6 || result.Pagination.Offset != 4 {
		t.Errorf("unexpected pagination: %+v", result.Pagination)
	}
	if resp.Header.Get("Link") == "" {
		t.Error("expected Link headers on paginated responses")
	}
}

func TestGetPlace_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var place domain.PointOfInterest
	json.NewDecoder(resp.Body).Decode(&place)
	if place.Name != "Dassam Falls" {
		t.Errorf("expected Dassam Falls, got %q", place.Name)
	}
}

func TestGetPlace_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/places/999", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- Trip handler tests ----

func TestSearchTrip_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search",
		strings.NewReader(`{"from": "Ranchi", "to": "Dassam Falls"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var trip usecases.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&trip); err != nil {
		t.Fatal(err)
	}
	if trip.From == nil || trip.From.Coord == nil || trip.From.Coord.Lat != ranchi.Lat {
		t.Errorf("expected resolved origin, got %+v", trip.From)
	}
	if trip.To == nil || trip.To.Label != "Dassam Falls" {
		t.Errorf("expected resolved destination, got %+v", trip.To)
	}
}

func TestSearchTrip_EmptyLabels(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search", strings.NewReader(`{"from": "", "to": "Dassam Falls"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSearchTrip_NotResolved(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search", strings.NewReader(`{"from": "Ranchi", "to": "Atlantis"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found code, got %q", apiErr.Code)
	}
}

func TestSearchTrip_SessionsAreIsolated(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search",
		strings.NewReader(`{"from": "Ranchi", "to": "Dassam Falls"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "kiosk-1")
	if resp, _ := app.Test(req, -1); resp.StatusCode != 200 {
		t.Fatalf("search: expected 200, got %d", resp.StatusCode)
	}

	// A different session sees no trip.
	other := httptest.NewRequest("GET", "/v1/trip", nil)
	other.Header.Set("X-Session-ID", "kiosk-2")
	resp, _ := app.Test(other, -1)

	var trip usecases.Snapshot
	json.NewDecoder(resp.Body).Decode(&trip)
	if trip.From != nil {
		t.Errorf("expected an empty trip in the other session, got %+v", trip.From)
	}
}

func TestSelectDestination_Success(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/destination", strings.NewReader(`{"place_id": 5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var trip usecases.Snapshot
	json.NewDecoder(resp.Body).Decode(&trip)
	if trip.To == nil || trip.To.Label != "Hundru Falls" {
		t.Errorf("expected destination Hundru Falls, got %+v", trip.To)
	}
}

func TestSelectDestination_UnknownPlace(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/destination", strings.NewReader(`{"place_id": 404}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLocate_WithClientFix(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/locate", strings.NewReader(`{"lat": 23.36, "lon": 85.33}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var trip usecases.Snapshot
	json.NewDecoder(resp.Body).Decode(&trip)
	if trip.From == nil || trip.From.Label != domain.CurrentLocationLabel {
		t.Errorf("expected the current-location origin, got %+v", trip.From)
	}
	if trip.To != nil {
		t.Errorf("expected the destination cleared, got %+v", trip.To)
	}
}

func TestLocate_Unavailable(t *testing.T) {
	deps := makeDeps(t, func(sd *usecases.SessionDeps) {
		sd.Locator = &mockLocator{} // always fails
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/trip/locate", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestReplay_NotResolvedReturnsTripWithError(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/replay",
		strings.NewReader(`{"from": "Ranchi", "to": "Atlantis"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var body struct {
		Trip usecases.Snapshot `json:"trip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Trip.From == nil || body.Trip.From.Coord != nil {
		t.Errorf("expected labels kept with coordinates cleared, got %+v", body.Trip.From)
	}
}

func TestGetTrip_IncludesCurrencyWithPrice(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search",
		strings.NewReader(`{"from": "Ranchi", "to": "Dassam Falls"}`))
	req.Header.Set("Content-Type", "application/json")
	if resp, _ := app.Test(req, -1); resp.StatusCode != 200 {
		t.Fatal("search failed")
	}

	// The route lands asynchronously; poll the snapshot.
	deadline := time.Now().Add(2 * time.Second)
	for {
		get := httptest.NewRequest("GET", "/v1/trip", nil)
		resp, _ := app.Test(get, -1)
		var trip struct {
			Price    *float64 `json:"price"`
			Currency string   `json:"currency"`
		}
		json.NewDecoder(resp.Body).Decode(&trip)
		if trip.Price != nil {
			if *trip.Price != 250.0 || trip.Currency != "INR" {
				t.Errorf("expected 250.0 INR, got %v %s", *trip.Price, trip.Currency)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("route never landed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestGetMap_BaseLayerAndView(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("GET", "/v1/trip/map", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		BaseLayer []domain.Marker `json:"base_layer"`
		View      domain.MapView  `json:"view"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.BaseLayer) != 6 {
		t.Errorf("expected 6 base-layer markers, got %d", len(body.BaseLayer))
	}
	if body.View.Viewport.Mode != domain.ViewportCenter || body.View.Viewport.Zoom != 8 {
		t.Errorf("expected the regional default view, got %+v", body.View.Viewport)
	}
}

// ---- History handler tests ----

func TestHistory_RecordAndClear(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/trip/search",
		strings.NewReader(`{"from": "Ranchi", "to": "Dassam Falls"}`))
	req.Header.Set("Content-Type", "application/json")
	if resp, _ := app.Test(req, -1); resp.StatusCode != 200 {
		t.Fatal("search failed")
	}

	get := httptest.NewRequest("GET", "/v1/history", nil)
	resp, _ := app.Test(get, -1)
	var entries []domain.HistoryEntry
	json.NewDecoder(resp.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].From != "Ranchi" {
		t.Fatalf("expected one history entry, got %+v", entries)
	}

	del := httptest.NewRequest("DELETE", "/v1/history", nil)
	resp, _ = app.Test(del, -1)
	if resp.StatusCode != 204 {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/history", nil), -1)
	entries = nil
	json.NewDecoder(resp.Body).Decode(&entries)
	if len(entries) != 0 {
		t.Errorf("expected empty history after clear, got %+v", entries)
	}
}

// ---- Health ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady_DegradedWithoutBroker(t *testing.T) {
	app := setupApp(makeDeps(t))

	// Catalog is loaded but NATS is absent in tests; the check must still
	// answer rather than hang.
	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 && resp.StatusCode != 503 {
		t.Fatalf("expected a readiness verdict, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func TestGraphQL_Places(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/graphql",
		strings.NewReader(`{"query": "{ places(category: \"tribal\") { id name category } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Places []struct {
				ID       int    `json:"id"`
				Name     string `json:"name"`
				Category string `json:"category"`
			} `json:"places"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("graphql errors: %v", result.Errors)
	}
	if len(result.Data.Places) == 0 {
		t.Fatal("expected tribal places")
	}
	for _, p := range result.Data.Places {
		if p.Category != "tribal" {
			t.Errorf("expected tribal, got %q", p.Category)
		}
	}
}

func TestGraphQL_Trip(t *testing.T) {
	app := setupApp(makeDeps(t))

	search := httptest.NewRequest("POST", "/v1/trip/search",
		strings.NewReader(`{"from": "Ranchi", "to": "Dassam Falls"}`))
	search.Header.Set("Content-Type", "application/json")
	search.Header.Set("X-Session-ID", "gql-test")
	if resp, _ := app.Test(search, -1); resp.StatusCode != 200 {
		t.Fatal("search failed")
	}

	req := httptest.NewRequest("POST", "/graphql",
		strings.NewReader(`{"query": "{ trip(session: \"gql-test\") { from { label } to { label } } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)

	var result struct {
		Data struct {
			Trip struct {
				From struct {
					Label string `json:"label"`
				} `json:"from"`
			} `json:"trip"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Data.Trip.From.Label != "Ranchi" {
		t.Errorf("expected Ranchi origin via GraphQL, got %q", result.Data.Trip.From.Label)
	}
}
