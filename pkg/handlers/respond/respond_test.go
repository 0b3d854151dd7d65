package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/caronaexpress/pkg/acceptance"
	"github.com/chris/caronaexpress/pkg/api"
	"github.com/chris/caronaexpress/pkg/discovery"
	"github.com/chris/caronaexpress/pkg/ride"
	"github.com/chris/caronaexpress/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Validation", &ride.ValidationError{Fields: []ride.FieldError{{Field: "origin", Reason: "required"}}}, http.StatusBadRequest, CodeValidation},
		{"Ride Not Found", acceptance.ErrRideNotFound, http.StatusNotFound, CodeRideNotFound},
		{"Already Accepted", acceptance.ErrAlreadyAccepted, http.StatusConflict, CodeAlreadyAccepted},
		{"Ride Full", fmt.Errorf("ride r1: %w", acceptance.ErrRideFull), http.StatusConflict, CodeRideFull},
		{"Ride Closed", acceptance.ErrRideClosed, http.StatusConflict, CodeRideClosed},
		{"Self Acceptance", acceptance.ErrSelfAcceptance, http.StatusForbidden, CodeSelfAcceptance},
		{"Insufficient Funds", acceptance.ErrInsufficientFunds, http.StatusUnprocessableEntity, CodeInsufficientFunds},
		{"Account Not Found", acceptance.ErrAccountNotFound, http.StatusInternalServerError, CodeAccountNotFound},
		{"Transient", fmt.Errorf("%w: %w", acceptance.ErrTransient, storage.ErrConflict), http.StatusServiceUnavailable, CodeTransient},
		{"Unavailable", fmt.Errorf("%w: %w", discovery.ErrUnavailable, storage.ErrUnavailable), http.StatusServiceUnavailable, CodeUnavailable},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Status(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestError(t *testing.T) {
	t.Run("Internal Details Hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		Error(rr, httptest.NewRequest(http.MethodGet, "/rides", nil), errors.New("dial tcp: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "internal error", body.Message)
	})

	t.Run("Validation Fields", func(t *testing.T) {
		rr := httptest.NewRecorder()
		err := &ride.ValidationError{Fields: []ride.FieldError{{Field: "seats_total", Reason: "must be a positive integer"}}}
		Error(rr, httptest.NewRequest(http.MethodPost, "/rides", nil), err)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body api.Error
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.NotNil(t, body.Fields)
		assert.Equal(t, []api.FieldError{{Field: "seats_total", Reason: "must be a positive integer"}}, *body.Fields)
	})
}
