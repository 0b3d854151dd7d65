package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chris/caronaexpress/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the caller as vouched for by the identity provider.
type Identity struct {
	AccountID   string
	DisplayName string
}

type identityKey struct{}

// callerKey holds the slot the request logger reads once the handler returns.
type callerKey struct{}

// WithIdentity stores id in ctx and reports it to the request logger, if any.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if slot, ok := ctx.Value(callerKey{}).(*Identity); ok {
		*slot = id
	}
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by Authenticator.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// AccountEnsurer opens the caller's account on first use.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, userID, displayName string) (*models.Account, error)
}

// Claims are the token claims we read. The subject is the account id.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Authenticator verifies an HS256 bearer token and makes sure the caller has
// an account. Browsers cannot set headers on WebSocket upgrades, so the token
// is also accepted in the access_token query parameter.
func Authenticator(secret []byte, accounts AccountEnsurer, logger *slog.Logger) func(next http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			var claims Claims
			if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return secret, nil }); err != nil {
				logger.Debug("rejected token", slog.Any("error", err))
				unauthorized(w, "invalid token")
				return
			}
			if claims.Subject == "" {
				unauthorized(w, "token has no subject")
				return
			}

			id := Identity{AccountID: claims.Subject, DisplayName: strings.TrimSpace(claims.Name)}
			if _, err := accounts.EnsureAccount(r.Context(), id.AccountID, id.DisplayName); err != nil {
				logger.Error("failed to open account", slog.String("account_id", id.AccountID), slog.Any("error", err))
				writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "could not load account")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// IssueToken signs a token for accountID. Used by tooling and tests.
func IssueToken(secret []byte, accountID, name string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = accountID
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Name: name, RegisteredClaims: claims}).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="caronaexpress"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", msg)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": msg})
}

// ErrNoIdentity is returned by handlers reached without Authenticator.
var ErrNoIdentity = errors.New("request has no authenticated identity")
