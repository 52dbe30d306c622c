package osrm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/jharkhandtours/tripfinder/internal/adapters/osrm"
	"github.com/jharkhandtours/tripfinder/internal/core/domain"
)

var (
	ranchi = domain.Coordinate{Lat: 23.3441, Lon: 85.3096}
	dassam = domain.Coordinate{Lat: 23.1895, Lon: 85.4572}
)

func TestFetchRoute_RequestUsesLonLatOrder(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"routes": [{"distance": 25000, "geometry": {"coordinates": [[85.3096, 23.3441], [85.4572, 23.1895]]}}]}`))
	}))
	defer srv.Close()

	c := osrm.NewClient(srv.URL)
	if _, err := c.FetchRoute(context.Background(), ranchi, dassam); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/route/v1/driving/85.309600,23.344100;85.457200,23.189500") {
		t.Errorf("expected lon,lat waypoint order in path, got %q", gotPath)
	}
	if !strings.Contains(gotQuery, "overview=full") || !strings.Contains(gotQuery, "geometries=geojson") {
		t.Errorf("expected full geojson geometry, got query %q", gotQuery)
	}
}

func TestFetchRoute_GeometryFlippedToLatLon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes": [{"distance": 25000, "geometry": {"coordinates": [[85.3096, 23.3441], [85.40, 23.25], [85.4572, 23.1895]]}}]}`))
	}))
	defer srv.Close()

	c := osrm.NewClient(srv.URL)
	route, err := c.FetchRoute(context.Background(), ranchi, dassam)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(route.Polyline) != 3 {
		t.Fatalf("expected 3 points, got %d", len(route.Polyline))
	}
	if route.Polyline[0].Lat != 23.3441 || route.Polyline[0].Lon != 85.3096 {
		t.Errorf("expected [lon,lat] pairs flipped on ingest, got %+v", route.Polyline[0])
	}
	if route.Polyline[1].Lat != 23.25 {
		t.Errorf("expected middle point latitude 23.25, got %v", route.Polyline[1].Lat)
	}
}

func TestFetchRoute_DistanceMetersToKmTwoDecimals(t *testing.T) {
	cases := []struct {
		meters float64
		wantKm float64
	}{
		{25000, 25.0},
		{25456, 25.46},
		{25454, 25.45},
		{999, 1.0},
		{4, 0.0},
		{0, 0.0},
	}

	for _, tc := range cases {
		meters := strconv.FormatFloat(tc.meters, 'f', -1, 64)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"routes": [{"distance": ` + meters +
				`, "geometry": {"coordinates": [[85.3, 23.3], [85.4, 23.2]]}}]}`))
		}))

		c := osrm.NewClient(srv.URL)
		route, err := c.FetchRoute(context.Background(), ranchi, dassam)
		srv.Close()
		if err != nil {
			t.Fatalf("distance %v: unexpected error: %v", tc.meters, err)
		}
		if route.DistanceKm != tc.wantKm {
			t.Errorf("distance %vm: expected %v km, got %v", tc.meters, tc.wantKm, route.DistanceKm)
		}
	}
}

func TestFetchRoute_NoRouteIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes": []}`))
	}))
	defer srv.Close()

	c := osrm.NewClient(srv.URL)
	if _, err := c.FetchRoute(context.Background(), ranchi, dassam); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchRoute_UpstreamErrorsCollapseToNotFound(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error":   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) },
		"malformed body": func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`not json`)) },
		"malformed pair": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"routes": [{"distance": 100, "geometry": {"coordinates": [[85.3]]}}]}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			c := osrm.NewClient(srv.URL)
			if _, err := c.FetchRoute(context.Background(), ranchi, dassam); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}
