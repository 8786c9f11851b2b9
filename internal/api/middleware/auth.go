package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rehabnet/rehabtracking/backend/internal/domain/entities"
)

type contextKey string

const identityContextKey contextKey = "caller_identity"

// Identity headers set by the auth gateway after it verifies the caller's
// token. This service trusts them and only performs domain-level
// ownership checks; it never sees credentials.
const (
	HeaderUserID         = "X-Auth-User-Id"
	HeaderRole           = "X-Auth-Role"
	HeaderDoctorID       = "X-Auth-Doctor-Id"
	HeaderRehabPatientID = "X-Auth-Rehab-Patient-Id"
)

// AuthMiddleware extracts the caller identity from the gateway headers and
// stores it on the request context. Requests without a usable identity are
// rejected before they reach a handler.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := entities.Identity{
			ID:             r.Header.Get(HeaderUserID),
			Role:           entities.Role(r.Header.Get(HeaderRole)),
			DoctorID:       r.Header.Get(HeaderDoctorID),
			RehabPatientID: r.Header.Get(HeaderRehabPatientID),
		}

		if identity.ID == "" || !identity.Role.IsValid() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid caller identity"})
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the caller identity stored by AuthMiddleware
func IdentityFromContext(ctx context.Context) (entities.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(entities.Identity)
	return identity, ok
}
