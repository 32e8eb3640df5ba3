package middleware

import (
	"encoding/json"
	"net/http"

	"kazi-marketplace/internal/domain/aggregate"
)

// RoleAuthMiddleware checks if the user acts as one of the required parties
func RoleAuthMiddleware(allowedParties ...aggregate.Party) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Role is set by the JWT middleware
			role, ok := GetUserRoleFromContext(r.Context())
			if !ok || role == "" {
				sendUnauthorized(w, "User role not found")
				return
			}

			party := aggregate.Party(role)
			hasPermission := false
			for _, allowed := range allowedParties {
				if party == allowed {
					hasPermission = true
					break
				}
			}

			if !hasPermission {
				sendForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware that requires the admin party
func RequireAdmin(next http.Handler) http.Handler {
	return RoleAuthMiddleware(aggregate.PartyAdmin)(next)
}

// RequireProvider middleware that requires the provider or admin party
func RequireProvider(next http.Handler) http.Handler {
	return RoleAuthMiddleware(aggregate.PartyProvider, aggregate.PartyAdmin)(next)
}

// RequireParticipant middleware that allows any authenticated marketplace party
func RequireParticipant(next http.Handler) http.Handler {
	return RoleAuthMiddleware(aggregate.PartyClient, aggregate.PartyProvider, aggregate.PartyAdmin)(next)
}

// sendForbidden sends a forbidden response
func sendForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error": map[string]string{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}
