package ledger

import (
	"context"
	"net/http"

	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/handlers/respond"
	"github.com/chris/caronaexpress/pkg/mapping"
	"github.com/chris/caronaexpress/pkg/models"
)

const (
	defaultLimit = int32(20)
	maxLimit     = int32(100)
)

// Reader lists ledger entries, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int32) ([]models.LedgerEntry, error)
	History(ctx context.Context, accountID string, limit int32) ([]models.LedgerEntry, error)
}

// LedgerHandler holds the dependencies for ledger-related handlers.
type LedgerHandler struct {
	Ledger Reader
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledger Reader) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger}
}

func (h *LedgerHandler) ListLedger(w http.ResponseWriter, r *http.Request, params api.ListLedgerParams) {
	domainEntries, err := h.Ledger.Recent(r.Context(), limitOf(params.Limit))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLedgerEntries(domainEntries))
}

// ListMyLedger lists the entries that touched the caller's account.
func (h *LedgerHandler) ListMyLedger(w http.ResponseWriter, r *http.Request, params api.ListMyLedgerParams) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	domainEntries, err := h.Ledger.History(r.Context(), id.AccountID, limitOf(params.Limit))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiLedgerEntries(domainEntries))
}

func limitOf(limit *int32) int32 {
	switch {
	case limit == nil || *limit <= 0:
		return defaultLimit
	case *limit > maxLimit:
		return maxLimit
	default:
		return *limit
	}
}
