package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewStructuredLogger logs one line per request with the caller's account and
// the ride it touched. It must run before Authenticator so the account set
// further down the chain is visible here.
func NewStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			caller := &Identity{}
			r = r.WithContext(context.WithValue(r.Context(), callerKey{}, caller))

			start := time.Now()
			defer func() {
				status := ww.Status()

				attrs := []any{
					slog.String("id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				if caller.AccountID != "" {
					attrs = append(attrs, slog.String("account_id", caller.AccountID))
				}
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if rideID := rctx.URLParam("rideId"); rideID != "" {
						attrs = append(attrs, slog.String("ride_id", rideID))
					}
				}

				requestAttrs := slog.Group("request", attrs...)
				responseAttrs := slog.Group("response",
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("latency", time.Since(start)),
				)

				switch {
				case status >= 500:
					logger.Error("server error", requestAttrs, responseAttrs)
				case status >= 400:
					logger.Warn("request rejected", requestAttrs, responseAttrs)
				default:
					logger.Info("request completed", requestAttrs, responseAttrs)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
