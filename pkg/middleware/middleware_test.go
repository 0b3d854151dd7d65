package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/caronaexpress/pkg/logging"
	"github.com/chris/caronaexpress/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

type fakeAccounts struct {
	opened []string
	err    error
}

func (f *fakeAccounts) EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.opened = append(f.opened, userID+"/"+displayName)
	return &models.Account{UserID: userID, DisplayName: displayName}, nil
}

func token(t *testing.T, key []byte, sub string, exp time.Time) string {
	t.Helper()
	tok, err := IssueToken(key, sub, "Ana", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})
	require.NoError(t, err)
	return tok
}

func TestAuthenticator(t *testing.T) {
	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	valid := time.Now().Add(time.Hour)

	cases := []struct {
		name   string
		header string
		query  string
		err    error
		status int
	}{
		{name: "Valid Header", header: "Bearer " + token(t, secret, "user-1", valid), status: http.StatusNoContent},
		{name: "Valid Query Token", query: token(t, secret, "user-1", valid), status: http.StatusNoContent},
		{name: "Missing Token", status: http.StatusUnauthorized},
		{name: "Wrong Scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "Wrong Key", header: "Bearer " + token(t, []byte("other"), "user-1", valid), status: http.StatusUnauthorized},
		{name: "Expired", header: "Bearer " + token(t, secret, "user-1", time.Now().Add(-time.Hour)), status: http.StatusUnauthorized},
		{name: "No Subject", header: "Bearer " + token(t, secret, "", valid), status: http.StatusUnauthorized},
		{name: "Account Store Down", header: "Bearer " + token(t, secret, "user-1", valid), err: errors.New("down"), status: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seen = Identity{}
			accounts := &fakeAccounts{err: tc.err}
			h := Authenticator(secret, accounts, logging.Discard())(next)
			target := "/me"
			if tc.query != "" {
				target += "?access_token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusNoContent {
				assert.Equal(t, Identity{AccountID: "user-1", DisplayName: "Ana"}, seen)
				assert.Equal(t, []string{"user-1/Ana"}, accounts.opened)
			} else {
				assert.Empty(t, seen.AccountID)
				assert.Contains(t, rr.Body.String(), `"code"`)
			}
		})
	}
}

func TestMetricsAndLogger(t *testing.T) {
	r := chi.NewRouter()
	r.Use(NewStructuredLogger(logging.Discard()))
	r.Use(Metrics)
	r.Get("/rides/{rideId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/rides/abc", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLoggerRecordsCaller(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(NewStructuredLogger(logging.NewWithWriter(&buf, "info", "json")))
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(secret, &fakeAccounts{}, logging.Discard()))
		r.Post("/rides/{rideId}/accept", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/rides/r-1/accept", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, secret, "ana", time.Now().Add(time.Hour)))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)

	var line struct {
		Level   string `json:"level"`
		Request struct {
			AccountID string `json:"account_id"`
			RideID    string `json:"ride_id"`
		} `json:"request"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line.Level)
	assert.Equal(t, "ana", line.Request.AccountID)
	assert.Equal(t, "r-1", line.Request.RideID)
}
