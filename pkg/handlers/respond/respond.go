// Package respond writes JSON responses and maps domain errors to HTTP
// statuses for every resource handler.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chris/caronaexpress/pkg/acceptance"
	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/geo"
	"github.com/chris/caronaexpress/pkg/ledger"
	"github.com/chris/caronaexpress/pkg/middleware"
	"github.com/chris/caronaexpress/pkg/ride"
	"github.com/chris/caronaexpress/pkg/storage"
)

// Machine-readable error codes. Clients branch on these, never on messages.
const (
	CodeBadRequest        = "bad_request"
	CodeValidation        = "validation_error"
	CodeUnknownLocation   = "unknown_location"
	CodeInvalidAmount     = "invalid_amount"
	CodeUnauthorized      = "unauthorized"
	CodeRideNotFound      = "ride_not_found"
	CodeDepositNotFound   = "deposit_not_found"
	CodeAlreadyAccepted   = "already_accepted"
	CodeRideFull          = "ride_full"
	CodeRideClosed        = "ride_closed"
	CodeSelfAcceptance    = "self_acceptance_forbidden"
	CodeNotDriver         = "not_driver"
	CodeInsufficientFunds = "insufficient_funds"
	CodeAccountNotFound   = "account_not_found"
	CodeTransient         = "transient_error"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal_error"
)

type mapping struct {
	target error
	status int
	code   string
}

// Checked in order; the first match wins. Transient comes first because it
// wraps the storage error that exhausted the retries.
var table = []mapping{
	{acceptance.ErrTransient, http.StatusServiceUnavailable, CodeTransient},
	{discovery.ErrUnavailable, http.StatusServiceUnavailable, CodeUnavailable},
	{storage.ErrUnavailable, http.StatusServiceUnavailable, CodeUnavailable},
	{middleware.ErrNoIdentity, http.StatusUnauthorized, CodeUnauthorized},
	{ride.ErrRideNotFound, http.StatusNotFound, CodeRideNotFound},
	{storage.ErrRideNotFound, http.StatusNotFound, CodeRideNotFound},
	{ledger.ErrDepositNotFound, http.StatusNotFound, CodeDepositNotFound},
	{acceptance.ErrAlreadyAccepted, http.StatusConflict, CodeAlreadyAccepted},
	{acceptance.ErrRideFull, http.StatusConflict, CodeRideFull},
	{ride.ErrRideClosed, http.StatusConflict, CodeRideClosed},
	{acceptance.ErrSelfAcceptance, http.StatusForbidden, CodeSelfAcceptance},
	{ride.ErrNotDriver, http.StatusForbidden, CodeNotDriver},
	{ledger.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
	{ledger.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{ledger.ErrSameAccount, http.StatusBadRequest, CodeBadRequest},
	{geo.ErrUnknownLocation, http.StatusBadRequest, CodeUnknownLocation},
	{ledger.ErrAccountNotFound, http.StatusInternalServerError, CodeAccountNotFound},
}

// Status returns the HTTP status and code for err.
func Status(err error) (int, string) {
	var verr *ride.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, CodeValidation
	}
	for _, m := range table {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", slog.Any("error", err))
	}
}

// Error writes err as an api.Error. Internal failures are logged and their
// details kept out of the response.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	body := api.Error{Code: code, Message: err.Error()}

	var verr *ride.ValidationError
	if errors.As(err, &verr) {
		fields := make([]api.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = api.FieldError{Field: f.Field, Reason: f.Reason}
		}
		body.Fields = &fields
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", code),
			slog.Any("error", err))
		if code == CodeInternal {
			body.Message = "internal error"
		}
	}
	JSON(w, status, body)
}

// BadRequest reports a request that could not be decoded.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, api.Error{Code: CodeBadRequest, Message: msg})
}

// Identity returns the authenticated caller or writes a 401.
func Identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		Error(w, r, middleware.ErrNoIdentity)
	}
	return id, ok
}
