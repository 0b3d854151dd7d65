// Package payments talks to the external payment provider that funds deposits.
package payments

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/chris/caronaexpress/pkg/models"
	"github.com/google/uuid"
)

// Status is the provider-side state of a charge.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// ErrUnknownCharge is returned when the provider has no charge with the given reference.
var ErrUnknownCharge = errors.New("unknown charge")

// Charge is a payment request created at the provider.
type Charge struct {
	// Ref is the provider's identifier for the charge.
	Ref string
	// Instructions is what the payer needs to complete it.
	Instructions string
}

// Gateway creates charges and reports their status.
type Gateway interface {
	CreateCharge(ctx context.Context, depositID string, amount models.Money) (*Charge, error)
	ChargeStatus(ctx context.Context, ref string) (Status, error)
}

// Sandbox is a Gateway for local development. Charges start PENDING and
// succeed once Complete is called, or immediately when AutoComplete is set.
type Sandbox struct {
	AutoComplete bool

	mu      sync.Mutex
	charges map[string]Status
}

// NewSandbox creates an empty Sandbox.
func NewSandbox(autoComplete bool) *Sandbox {
	return &Sandbox{AutoComplete: autoComplete, charges: make(map[string]Status)}
}

var _ Gateway = (*Sandbox)(nil)

func (s *Sandbox) CreateCharge(ctx context.Context, depositID string, amount models.Money) (*Charge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := "sandbox_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	status := StatusPending
	if s.AutoComplete {
		status = StatusSucceeded
	}
	s.charges[ref] = status
	return &Charge{Ref: ref, Instructions: "sandbox payment " + amount.String() + " BRL"}, nil
}

func (s *Sandbox) ChargeStatus(ctx context.Context, ref string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.charges[ref]
	if !ok {
		return "", ErrUnknownCharge
	}
	return status, nil
}

// Complete sets the final status of a sandbox charge.
func (s *Sandbox) Complete(ref string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.charges[ref]; !ok {
		return ErrUnknownCharge
	}
	s.charges[ref] = status
	return nil
}
