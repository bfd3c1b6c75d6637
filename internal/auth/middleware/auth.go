package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"portal/internal/auth"
	"portal/internal/domain"
	"portal/internal/platform/telemetry"
)

// RequireAuth returns middleware that runs the identity resolution pipeline
// on every request. On acceptance the Principal (and, on the external path,
// the raw external claims) is attached to the request context and the
// continuation runs; on rejection the categorized JSON envelope is written
// and the continuation is never invoked.
// Paths in publicPaths are exempt from resolution.
// The metrics parameter is optional; pass nil to skip metric recording.
func RequireAuth(resolver *auth.Resolver, publicPaths []string, m *telemetry.AuthMetrics) Middleware {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			out := resolver.Resolve(r)
			duration := time.Since(start).Seconds()

			if out.Rejection != nil {
				if m != nil {
					m.RecordResolution(r.Context(), "none", "rejected", duration)
					m.RecordRejection(r.Context(), string(out.Rejection.Kind))
				}
				writeRejection(w, out.Rejection)
				return
			}

			principal := *out.Principal
			if m != nil {
				m.RecordResolution(r.Context(), string(principal.Provider), "accepted", duration)
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			if out.ExternalClaims != nil {
				ctx = auth.ContextWithExternalClaims(ctx, *out.ExternalClaims)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeRejection(w http.ResponseWriter, rej *auth.Rejection) {
	resp := domain.ErrorResponse{Message: rej.Message}
	if rej.Kind.ListsProviders() {
		resp.AvailableProviders = domain.AvailableProviders
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rej.Kind.Status())
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encoding rejection response", "error", err)
	}
}
