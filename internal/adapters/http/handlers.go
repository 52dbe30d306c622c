package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jharkhandtours/tripfinder/internal/core/domain"
	"github.com/jharkhandtours/tripfinder/internal/core/usecases"
)

// session picks the caller's trip session off the request header.
func session(deps *Dependencies, c *fiber.Ctx) *usecases.TripSession {
	return deps.Sessions.Get(c.Get(sessionIDHeader))
}

// tripResponse is a session snapshot plus the currency the price is in.
type tripResponse struct {
	usecases.Snapshot
	Currency string `json:"currency,omitempty"`
}

func tripJSON(deps *Dependencies, c *fiber.Ctx, snap usecases.Snapshot) error {
	resp := tripResponse{Snapshot: snap}
	if snap.Price != nil {
		resp.Currency = deps.Currency
	}
	return c.JSON(resp)
}

// ListPlacesHandler returns the point-of-interest catalog, optionally
// filtered by category or sorted by distance from a point.
func ListPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category := domain.Category(c.Query("category"))
		if category != "" && category != domain.CategoryTribal && category != domain.CategoryPopular {
			return errBadRequest(c, "category must be tribal or popular")
		}

		var places []domain.PointOfInterest
		if c.Query("lat") != "" || c.Query("lon") != "" {
			near := domain.Coordinate{Lat: c.QueryFloat("lat"), Lon: c.QueryFloat("lon")}
			if !near.Valid() {
				return errBadRequest(c, "lat and lon must form a valid coordinate")
			}
			places = deps.Catalog.Near(near)
			if category != "" {
				filtered := places[:0]
				for _, p := range places {
					if p.Category == category {
						filtered = append(filtered, p)
					}
				}
				places = filtered
			}
		} else {
			places = deps.Catalog.All(category)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(places)
		if offset >= total {
			places = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			places = places[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: places, Pagination: pg})
	}
}

// GetPlaceHandler returns one catalog place.
func GetPlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return errBadRequest(c, "place id must be an integer")
		}
		place, err := deps.Catalog.ByID(id)
		if err != nil {
			return errNotFound(c, "place not found")
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(place)
	}
}

type searchRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SearchTripHandler resolves both labels and commits the trip.
func SearchTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		snap, err := session(deps, c).Search(c.UserContext(), req.From, req.To)
		switch {
		case errors.Is(err, domain.ErrValidation):
			return errBadRequest(c, "please enter both pick-up and drop-off locations")
		case errors.Is(err, domain.ErrNotResolved):
			return errNotFound(c, "one or both locations could not be found")
		case errors.Is(err, domain.ErrStale):
			return errConflict(c, "search superseded by a newer one")
		case err != nil:
			return errInternal(c, err.Error())
		}
		return tripJSON(deps, c, snap)
	}
}

type destinationRequest struct {
	PlaceID int `json:"place_id"`
}

// SelectDestinationHandler is the "route to here" action from a place
// marker's popup: it sets the destination without geocoding.
func SelectDestinationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req destinationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		place, err := deps.Catalog.ByID(req.PlaceID)
		if err != nil {
			return errNotFound(c, "place not found")
		}
		snap := session(deps, c).SelectPlace(c.UserContext(), place)
		return tripJSON(deps, c, snap)
	}
}

type locateRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// LocateHandler sets the origin to the caller's position: the fix from the
// request body when the client shared one, otherwise a lookup on the
// caller's IP.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locateRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		var fix *domain.Coordinate
		if req.Lat != nil && req.Lon != nil {
			fix = &domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
		}

		snap, err := session(deps, c).UseCurrentLocation(c.UserContext(), fix, c.IP())
		if errors.Is(err, domain.ErrLocationUnavailable) {
			return errUnavailable(c, "unable to determine your location, please check permissions")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}
		return tripJSON(deps, c, snap)
	}
}

type replayRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ReplayHistoryHandler re-runs a recent search by its labels.
func ReplayHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req replayRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		entry := domain.HistoryEntry{From: req.From, To: req.To}
		snap, err := session(deps, c).ReplayHistory(c.UserContext(), entry)
		switch {
		case errors.Is(err, domain.ErrValidation):
			return errBadRequest(c, "history entry is missing labels")
		case errors.Is(err, domain.ErrNotResolved):
			// Coordinates were cleared; return the snapshot alongside the error.
			reqID, _ := c.Locals("requestid").(string)
			return c.Status(404).JSON(fiber.Map{
				"error": APIError{Status: 404, Code: "not_found", Message: "could not find locations from history", RequestID: reqID},
				"trip":  snap,
			})
		case errors.Is(err, domain.ErrStale):
			return errConflict(c, "replay superseded by a newer search")
		case err != nil:
			return errInternal(c, err.Error())
		}
		return tripJSON(deps, c, snap)
	}
}

// GetTripHandler returns the session's current trip snapshot.
func GetTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return tripJSON(deps, c, session(deps, c).Snapshot())
	}
}

// GetMapHandler returns the full map state: the static place base layer and
// the current trip frame.
func GetMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session(deps, c)
		return c.JSON(fiber.Map{
			"base_layer": deps.MapSync.BaseLayer(),
			"view":       sess.MapView(),
		})
	}
}

// ListHistoryHandler returns the session's recent searches, newest first.
func ListHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries := session(deps, c).History()
		if entries == nil {
			entries = []domain.HistoryEntry{}
		}
		return c.JSON(entries)
	}
}

// ClearHistoryHandler empties the session's history; the trip is untouched.
func ClearHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session(deps, c).ClearHistory()
		return c.SendStatus(204)
	}
}
