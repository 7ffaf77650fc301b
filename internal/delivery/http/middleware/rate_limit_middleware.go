package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"lab-booking/pkg/ratelimit"
	"lab-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	log     *logrus.Logger
}

func NewRateLimitMiddleware(limiter ratelimit.Limiter, log *logrus.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, log: log}
}

// Handle counts the request against the caller's window. Authenticated
// callers are keyed by user id, anonymous ones by client IP. A limiter
// failure lets the request through.
func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + ClientIP(r)
		if actor, ok := ActorFromContext(r.Context()); ok && actor.IsAuthenticated() {
			key = "user:" + actor.ID.String()
		}

		result, err := m.limiter.Allow(r.Context(), key)
		if err != nil {
			m.log.Warnf("Rate limiter unavailable, allowing request: %+v", err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			response.TooManyRequests(w, result.RetryAfter)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the originating client address, preferring proxy headers
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
