package rides

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/chris/caronaexpress/pkg/acceptance"
	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/geo"
	"github.com/chris/caronaexpress/pkg/handlers/respond"
	"github.com/chris/caronaexpress/pkg/mapping"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/ride"
)

const defaultLocationLimit = 10

// RideService is the part of ride.Service the handlers call.
type RideService interface {
	Offer(ctx context.Context, driver ride.Driver, offer ride.Offer) (*models.Ride, error)
	Get(ctx context.Context, rideID string) (*models.Ride, error)
	Close(ctx context.Context, driverID, rideID string) (*models.Ride, error)
	ListForDriver(ctx context.Context, driverID string) ([]models.Ride, error)
	ListForPassenger(ctx context.Context, accountID string) ([]models.Ride, error)
}

// Searcher runs discovery queries.
type Searcher interface {
	Collect(ctx context.Context, f discovery.Filters) ([]models.Ride, error)
}

// Acceptor claims seats.
type Acceptor interface {
	Accept(ctx context.Context, req acceptance.Request) (*acceptance.Result, error)
}

// Places resolves and suggests catalog locations.
type Places interface {
	ride.Locator
	Suggest(text string, limit int) []geo.Place
}

// RidesHandler holds the dependencies for ride-related handlers.
type RidesHandler struct {
	Rides      RideService
	Discovery  Searcher
	Acceptance Acceptor
	Places     Places
}

// NewRidesHandler creates a new RidesHandler.
func NewRidesHandler(rides RideService, discovery Searcher, acceptance Acceptor, places Places) *RidesHandler {
	return &RidesHandler{Rides: rides, Discovery: discovery, Acceptance: acceptance, Places: places}
}

// OfferRide publishes a new ride for the authenticated driver.
func (h *RidesHandler) OfferRide(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	var newRide api.NewRide
	if err := json.NewDecoder(r.Body).Decode(&newRide); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	created, err := h.Rides.Offer(r.Context(), ride.Driver{AccountID: id.AccountID, DisplayName: id.DisplayName}, mapping.ToDomainOffer(&newRide))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiRide(created))
}

// GetRide returns one ride, open or closed.
func (h *RidesHandler) GetRide(w http.ResponseWriter, r *http.Request, rideId string) {
	found, err := h.Rides.Get(r.Context(), rideId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRide(found))
}

// ListRides runs a one-shot discovery search.
func (h *RidesHandler) ListRides(w http.ResponseWriter, r *http.Request, params api.ListRidesParams) {
	found, err := h.Discovery.Collect(r.Context(), mapping.ToDomainFilters(params))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRides(found))
}

// AcceptRide claims a seat for the caller and pays the driver.
func (h *RidesHandler) AcceptRide(w http.ResponseWriter, r *http.Request, rideId string) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	res, err := h.Acceptance.Accept(r.Context(), acceptance.Request{
		RideID:      rideId,
		AccountID:   id.AccountID,
		DisplayName: id.DisplayName,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAcceptance(res))
}

// CloseRide stops a ride from being discovered or accepted.
func (h *RidesHandler) CloseRide(w http.ResponseWriter, r *http.Request, rideId string) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	closed, err := h.Rides.Close(r.Context(), id.AccountID, rideId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRide(closed))
}

// ListMyRides lists rides the caller offers, rides the caller has a seat on,
// or both when no role is given.
func (h *RidesHandler) ListMyRides(w http.ResponseWriter, r *http.Request, params api.ListMyRidesParams) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var (
		found []models.Ride
		err   error
	)
	switch {
	case params.Role == nil:
		found, err = h.allRides(ctx, id.AccountID)
	case *params.Role == api.ListMyRidesParamsRoleDriver:
		found, err = h.Rides.ListForDriver(ctx, id.AccountID)
	case *params.Role == api.ListMyRidesParamsRolePassenger:
		found, err = h.Rides.ListForPassenger(ctx, id.AccountID)
	default:
		respond.BadRequest(w, fmt.Sprintf("unknown role %q", *params.Role))
		return
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiRides(found))
}

func (h *RidesHandler) allRides(ctx context.Context, accountID string) ([]models.Ride, error) {
	driving, err := h.Rides.ListForDriver(ctx, accountID)
	if err != nil {
		return nil, err
	}
	riding, err := h.Rides.ListForPassenger(ctx, accountID)
	if err != nil {
		return nil, err
	}
	all := append(driving, riding...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// QuoteRide returns the distance and a suggested seat price between two places.
func (h *RidesHandler) QuoteRide(w http.ResponseWriter, r *http.Request, params api.QuoteRideParams) {
	quote, err := ride.NewQuote(h.Places, params.Origin, params.Destination)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiQuote(quote))
}

// ListLocations autocompletes place names.
func (h *RidesHandler) ListLocations(w http.ResponseWriter, r *http.Request, params api.ListLocationsParams) {
	q, limit := "", defaultLocationLimit
	if params.Q != nil {
		q = *params.Q
	}
	if params.Limit != nil && *params.Limit > 0 {
		limit = *params.Limit
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLocations(h.Places.Suggest(q, limit)))
}
