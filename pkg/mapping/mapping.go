package mapping

import (
	"github.com/chris/caronaexpress/pkg/acceptance"
	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/geo"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/chris/caronaexpress/pkg/ride"
)

// ToApiAccount converts a domain Account model to an API Account model.
func ToApiAccount(acct *models.Account) *api.Account {
	return &api.Account{
		UserId:      acct.UserID,
		DisplayName: acct.DisplayName,
		Balance:     acct.Balance.String(),
		CreatedAt:   acct.CreatedAt,
	}
}

// ToApiRide converts a domain Ride model to an API Ride model. The roster is
// never nil so it serializes as an empty list.
func ToApiRide(r *models.Ride) *api.Ride {
	passengers := make([]api.Passenger, len(r.Passengers))
	for i, p := range r.Passengers {
		passengers[i] = api.Passenger{AccountId: p.AccountID, DisplayName: p.DisplayName}
	}
	return &api.Ride{
		Id:           r.ID,
		DriverId:     r.DriverID,
		DriverName:   r.DriverName,
		Origin:       r.Origin,
		Destination:  r.Destination,
		DistanceKm:   float32(r.DistanceKm),
		Date:         r.Date,
		Time:         r.Time,
		Vehicle:      r.Vehicle,
		PricePerSeat: r.PricePerSeat.String(),
		SeatsTotal:   r.SeatsTotal,
		SeatsLeft:    r.SeatsLeft(),
		Full:         r.IsFull(),
		Passengers:   passengers,
		Status:       api.RideStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		ClosedAt:     r.ClosedAt,
	}
}

// ToApiRides converts a list of rides, keeping their order.
func ToApiRides(rides []models.Ride) []api.Ride {
	out := make([]api.Ride, len(rides))
	for i := range rides {
		out[i] = *ToApiRide(&rides[i])
	}
	return out
}

// ToDomainOffer converts an API NewRide model to a ride offer.
func ToDomainOffer(newRide *api.NewRide) ride.Offer {
	return ride.Offer{
		Origin:      newRide.Origin,
		Destination: newRide.Destination,
		Date:        newRide.Date,
		Time:        newRide.Time,
		Vehicle:     newRide.Vehicle,
		SeatsTotal:  newRide.SeatsTotal,
		Price:       newRide.PricePerSeat,
	}
}

// ToDomainFilters converts search query parameters. Malformed numbers are
// dropped by discovery.ParseFilters.
func ToDomainFilters(params api.ListRidesParams) discovery.Filters {
	return discovery.ParseFilters(discovery.RawFilters{
		Destination: deref(params.Destination),
		Date:        deref(params.Date),
		Time:        deref(params.Time),
		PriceMin:    deref(params.PriceMin),
		PriceMax:    deref(params.PriceMax),
		DistanceMin: deref(params.DistanceMin),
		DistanceMax: deref(params.DistanceMax),
	})
}

// ToApiAcceptance converts the outcome of a seat claim.
func ToApiAcceptance(res *acceptance.Result) *api.Acceptance {
	transferID := res.Transfer.ID
	return &api.Acceptance{
		Ride:             *ToApiRide(res.Ride),
		PassengerBalance: res.PassengerBalance.String(),
		DriverBalance:    res.DriverBalance.String(),
		PassengerCount:   res.PassengerCount,
		TransferId:       &transferID,
	}
}

// ToApiLedgerEntry converts a domain LedgerEntry model to an API LedgerEntry model.
func ToApiLedgerEntry(entry *models.LedgerEntry) *api.LedgerEntry {
	out := &api.LedgerEntry{
		EntryId:     entry.EntryID,
		TransferId:  entry.TransferID,
		AccountId:   entry.AccountID,
		Side:        api.LedgerEntrySide(entry.Side),
		Amount:      entry.Amount.String(),
		Kind:        string(entry.Kind),
		Description: entry.Description,
		Timestamp:   entry.Timestamp,
	}
	if entry.Reference != "" {
		ref := entry.Reference
		out.Reference = &ref
	}
	return out
}

// ToApiLedgerEntries converts a page of ledger entries.
func ToApiLedgerEntries(entries []models.LedgerEntry) []api.LedgerEntry {
	out := make([]api.LedgerEntry, len(entries))
	for i := range entries {
		out[i] = *ToApiLedgerEntry(&entries[i])
	}
	return out
}

// ToApiDeposit converts a domain Deposit model to an API Deposit model.
// Instructions are only shown while the payment is outstanding.
func ToApiDeposit(d *models.Deposit) *api.Deposit {
	out := &api.Deposit{
		Id:         d.ID,
		Amount:     d.Amount.String(),
		Method:     d.Method,
		Status:     api.DepositStatus(d.Status),
		PaymentRef: d.PaymentRef,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.Status == models.DepositPending && d.Instructions != "" {
		instructions := d.Instructions
		out.Instructions = &instructions
	}
	return out
}

// ToApiWithdrawal describes a completed withdrawal and the balance it left.
func ToApiWithdrawal(t *models.Transfer, balance models.Money) *api.Withdrawal {
	return &api.Withdrawal{
		TransferId: t.ID,
		Amount:     t.Amount.String(),
		Balance:    balance.String(),
	}
}

// ToApiQuote converts a price quote.
func ToApiQuote(q *ride.Quote) *api.Quote {
	return &api.Quote{
		Origin:         q.Origin,
		Destination:    q.Destination,
		DistanceKm:     float32(q.DistanceKm),
		SuggestedPrice: q.SuggestedPrice.String(),
	}
}

// ToApiLocations converts catalog places.
func ToApiLocations(places []geo.Place) []api.Location {
	out := make([]api.Location, len(places))
	for i, p := range places {
		out[i] = api.Location{Name: p.Name}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
