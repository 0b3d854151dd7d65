package wallets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/handlers/respond"
	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/mapping"
	"github.com/chris/caronaexpress/pkg/models"
)

// Accounts reads balances and moves money out.
type Accounts interface {
	Account(ctx context.Context, userID string) (*models.Account, error)
	Withdraw(ctx context.Context, accountID string, amount models.Money) (*models.Transfer, error)
}

// Deposits opens and reads deposits.
type Deposits interface {
	Start(ctx context.Context, accountID string, amount models.Money) (*models.Deposit, error)
	Get(ctx context.Context, accountID, depositID string) (*models.Deposit, error)
}

// WalletsHandler holds the dependencies for the caller's own account: the
// balance, deposits and withdrawals.
type WalletsHandler struct {
	Accounts Accounts
	Deposits Deposits
}

// NewWalletsHandler creates a new WalletsHandler.
func NewWalletsHandler(accounts Accounts, deposits Deposits) *WalletsHandler {
	return &WalletsHandler{Accounts: accounts, Deposits: deposits}
}

// GetMe returns the caller's account. Authentication has already created it.
func (h *WalletsHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	acct, err := h.Accounts.Account(r.Context(), id.AccountID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiAccount(acct))
}

// StartDeposit opens a PIX charge for the requested amount.
func (h *WalletsHandler) StartDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	var body api.NewDeposit
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	deposit, err := h.Deposits.Start(r.Context(), id.AccountID, amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiDeposit(deposit))
}

// GetDeposit returns one of the caller's deposits.
func (h *WalletsHandler) GetDeposit(w http.ResponseWriter, r *http.Request, depositId string) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	deposit, err := h.Deposits.Get(r.Context(), id.AccountID, depositId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiDeposit(deposit))
}

// Withdraw takes money out of the caller's balance.
func (h *WalletsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.Identity(w, r)
	if !ok {
		return
	}
	var body api.NewWithdrawal
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respond.BadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	amount, err := parseAmount(body.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	ctx := r.Context()
	transfer, err := h.Accounts.Withdraw(ctx, id.AccountID, amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	acct, err := h.Accounts.Account(ctx, id.AccountID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiWithdrawal(transfer, acct.Balance))
}

func parseAmount(s string) (models.Money, error) {
	amount, err := models.ParseMoney(s)
	if err != nil {
		return models.Money{}, fmt.Errorf("%w: %v", ledger.ErrInvalidAmount, err)
	}
	return amount, nil
}
