package models

import (
	"time"
)

// RideStatus defines the possible states of a ride offering.
type RideStatus string

const (
	RideActive RideStatus = "ACTIVE"
	RideClosed RideStatus = "CLOSED"
)

// Account is a user's identity plus monetary balance. The balance is only
// mutated through ledger transfers.
type Account struct {
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	DisplayName string    `json:"display_name" dynamodbav:"display_name"`
	Balance     Money     `json:"balance" dynamodbav:"balance"`
	Version     int64     `json:"version" dynamodbav:"version"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Passenger is an entry in a ride's roster. DisplayName is denormalized for
// display only; membership is decided by AccountID.
type Passenger struct {
	AccountID   string `json:"account_id" dynamodbav:"account_id"`
	DisplayName string `json:"display_name" dynamodbav:"display_name"`
}

// Ride is a seat-limited offering posted by a driver.
type Ride struct {
	ID           string      `json:"id" dynamodbav:"id"`
	DriverID     string      `json:"driver_id" dynamodbav:"driver_id"`
	DriverName   string      `json:"driver_name" dynamodbav:"driver_name"`
	Origin       string      `json:"origin" dynamodbav:"origin"`
	Destination  string      `json:"destination" dynamodbav:"destination"`
	DistanceKm   float64     `json:"distance_km" dynamodbav:"distance_km"`
	Date         string      `json:"date" dynamodbav:"date"`
	Time         string      `json:"time" dynamodbav:"time"`
	Vehicle      string      `json:"vehicle" dynamodbav:"vehicle"`
	PricePerSeat Money       `json:"price_per_seat" dynamodbav:"price_per_seat"`
	SeatsTotal   int         `json:"seats_total" dynamodbav:"seats_total"`
	Passengers   []Passenger `json:"passengers" dynamodbav:"passengers"`
	// PassengerIDs mirrors Passengers for use in condition and filter expressions.
	PassengerIDs []string   `json:"-" dynamodbav:"passenger_ids,stringset,omitempty"`
	Status       RideStatus `json:"status" dynamodbav:"status"`
	Version      int64      `json:"version" dynamodbav:"version"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty" dynamodbav:"closed_at,omitempty"`
}

// IsFull reports whether every seat has been taken.
func (r *Ride) IsFull() bool {
	return len(r.Passengers) >= r.SeatsTotal
}

// HasPassenger reports whether accountID already holds a seat.
func (r *Ride) HasPassenger(accountID string) bool {
	for _, p := range r.Passengers {
		if p.AccountID == accountID {
			return true
		}
	}
	return false
}

// SeatsLeft returns the number of free seats, never negative.
func (r *Ride) SeatsLeft() int {
	if n := r.SeatsTotal - len(r.Passengers); n > 0 {
		return n
	}
	return 0
}

// EntryKind classifies a ledger movement.
type EntryKind string

const (
	EntryRideFare   EntryKind = "RIDE_FARE"
	EntryTransfer   EntryKind = "TRANSFER"
	EntryDeposit    EntryKind = "DEPOSIT"
	EntryWithdrawal EntryKind = "WITHDRAWAL"
)

// EntrySide is the side of a double-entry ledger line.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// LedgerEntryPartition is the constant partition key used to list all entries by time.
const LedgerEntryPartition = "LEDGER_ENTRIES"

// LedgerEntry represents a single line in the double-entry ledger.
type LedgerEntry struct {
	EntryID     string    `json:"entry_id" dynamodbav:"entry_id"`
	TransferID  string    `json:"transfer_id" dynamodbav:"transfer_id"`
	AccountID   string    `json:"account_id" dynamodbav:"account_id"`
	Side        EntrySide `json:"side" dynamodbav:"side"`
	Amount      Money     `json:"amount" dynamodbav:"amount"`
	Kind        EntryKind `json:"kind" dynamodbav:"kind"`
	Reference   string    `json:"reference,omitempty" dynamodbav:"reference,omitempty"`
	Description string    `json:"description" dynamodbav:"description"`
	Timestamp   time.Time `json:"timestamp" dynamodbav:"timestamp"`
	GSI1PK      string    `json:"-" dynamodbav:"gsi1pk"`
}

// Transfer is a single indivisible movement of money. An empty FromAccountID
// means the funds enter the system (deposit); an empty ToAccountID means they
// leave it (withdrawal).
type Transfer struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"from_account_id,omitempty"`
	ToAccountID   string    `json:"to_account_id,omitempty"`
	Amount        Money     `json:"amount"`
	Kind          EntryKind `json:"kind"`
	Reference     string    `json:"reference,omitempty"`
	// DepositID, when set, is moved from PENDING to CREDITED in the same atomic write.
	DepositID   string    `json:"deposit_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Entries expands the transfer into its ledger lines. Entry ids are derived
// from the transfer id so a replayed transfer collides with its first write.
func (t *Transfer) Entries() []LedgerEntry {
	var entries []LedgerEntry
	if t.FromAccountID != "" {
		entries = append(entries, t.entry(t.FromAccountID, Debit))
	}
	if t.ToAccountID != "" {
		entries = append(entries, t.entry(t.ToAccountID, Credit))
	}
	return entries
}

func (t *Transfer) entry(accountID string, side EntrySide) LedgerEntry {
	return LedgerEntry{
		EntryID:     t.ID + "#" + string(side),
		TransferID:  t.ID,
		AccountID:   accountID,
		Side:        side,
		Amount:      t.Amount,
		Kind:        t.Kind,
		Reference:   t.Reference,
		Description: t.Description,
		Timestamp:   t.CreatedAt,
		GSI1PK:      LedgerEntryPartition,
	}
}

// DepositStatus defines the states of an incoming payment.
type DepositStatus string

const (
	DepositPending  DepositStatus = "PENDING"
	DepositCredited DepositStatus = "CREDITED"
	DepositFailed   DepositStatus = "FAILED"
)

// Deposit tracks money entering an account through the payment gateway.
type Deposit struct {
	ID         string        `json:"id" dynamodbav:"id"`
	AccountID  string        `json:"account_id" dynamodbav:"account_id"`
	Amount     Money         `json:"amount" dynamodbav:"amount"`
	Method     string        `json:"method" dynamodbav:"method"`
	PaymentRef string        `json:"payment_ref" dynamodbav:"payment_ref"`
	Status     DepositStatus `json:"status" dynamodbav:"status"`
	// Instructions carries what the payer needs to complete the payment (for PIX, the copy-and-paste code).
	Instructions string    `json:"instructions,omitempty" dynamodbav:"instructions,omitempty"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// Acceptance is everything needed to commit a passenger's claim on a seat.
// Ride is the copy the checks were made against; its Version guards the commit.
type Acceptance struct {
	Ride      *Ride
	Passenger Passenger
	Transfer  Transfer
}
