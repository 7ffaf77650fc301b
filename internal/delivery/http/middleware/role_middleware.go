package middleware

import (
	"net/http"

	"lab-booking/pkg/response"
)

// RequireAdmin rejects callers without the admin role. It must run after
// Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAuthenticated() {
			response.Unauthorized(w, "Authentication required")
			return
		}

		if !actor.IsAdmin() {
			response.Forbidden(w, "You don't have permission to access this resource")
			return
		}

		next.ServeHTTP(w, r)
	})
}
