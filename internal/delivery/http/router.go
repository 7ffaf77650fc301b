package http

import (
	"net/http"

	"lab-booking/internal/delivery/http/handler"
	"lab-booking/internal/delivery/http/middleware"
	"lab-booking/pkg/metrics"

	"github.com/gorilla/mux"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Auth       *handler.AuthHandler
	LabTest    *handler.LabTestHandler
	Booking    *handler.BookingHandler
	SiteConfig *handler.SiteConfigHandler
	AdminUser  *handler.AdminUserHandler
	AuditLog   *handler.AuditLogHandler
}

// Middlewares groups the middleware the router applies per route group
type Middlewares struct {
	Auth             *middleware.AuthMiddleware
	CORS             *middleware.CORSMiddleware
	AuthRateLimit    *middleware.RateLimitMiddleware
	BookingRateLimit *middleware.RateLimitMiddleware
	AdminRateLimit   *middleware.RateLimitMiddleware
	RequestLogger    func(http.Handler) http.Handler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	middlewares    Middlewares
	metrics        *metrics.Metrics
	metricsPath    string
	metricsHandler http.Handler
}

// NewRouter wires the handlers. metricsHandler may be nil to leave the
// metrics endpoint unmounted.
func NewRouter(handlers Handlers, middlewares Middlewares, m *metrics.Metrics, metricsPath string, metricsHandler http.Handler) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		middlewares:    middlewares,
		metrics:        m,
		metricsPath:    metricsPath,
		metricsHandler: metricsHandler,
	}
}

func (r *Router) Setup() http.Handler {
	if r.metricsHandler != nil {
		r.router.Handle(r.metricsPath, r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, rate limited)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(r.middlewares.AuthRateLimit.Handle)
	auth.HandleFunc("/signup", r.handlers.Auth.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.handlers.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", r.handlers.Auth.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", r.handlers.Auth.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", r.handlers.Auth.ResetPassword).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.middlewares.Auth.Authenticate)
	authProtected.HandleFunc("/logout", r.handlers.Auth.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.handlers.Auth.Me).Methods(http.MethodGet)

	// Public catalog and settings
	api.HandleFunc("/tests", r.handlers.LabTest.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/tests/{id}", r.handlers.LabTest.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/settings", r.handlers.SiteConfig.Get).Methods(http.MethodGet)

	// Bookings (owner or admin)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.middlewares.Auth.Authenticate)
	bookings.HandleFunc("", r.handlers.Booking.GetMyBookings).Methods(http.MethodGet)
	bookings.Handle("", r.middlewares.BookingRateLimit.Handle(http.HandlerFunc(r.handlers.Booking.CreateBooking))).Methods(http.MethodPost)
	bookings.HandleFunc("/{id}", r.handlers.Booking.GetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}", r.handlers.Booking.EditBooking).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}/cancel", r.handlers.Booking.CancelBooking).Methods(http.MethodPost)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.middlewares.Auth.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.Use(r.middlewares.AdminRateLimit.Handle)

	admin.HandleFunc("/bookings", r.handlers.Booking.AdminListBookings).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}", r.handlers.Booking.GetBooking).Methods(http.MethodGet)
	admin.HandleFunc("/bookings/{id}", r.handlers.Booking.AdminUpdateBooking).Methods(http.MethodPatch)

	admin.HandleFunc("/tests", r.handlers.LabTest.GetAll).Methods(http.MethodGet)
	admin.HandleFunc("/tests", r.handlers.LabTest.Create).Methods(http.MethodPost)
	admin.HandleFunc("/tests/{id}", r.handlers.LabTest.GetByID).Methods(http.MethodGet)
	admin.HandleFunc("/tests/{id}", r.handlers.LabTest.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/tests/{id}", r.handlers.LabTest.Delete).Methods(http.MethodDelete)

	admin.HandleFunc("/settings", r.handlers.SiteConfig.Get).Methods(http.MethodGet)
	admin.HandleFunc("/settings", r.handlers.SiteConfig.Update).Methods(http.MethodPut)

	admin.HandleFunc("/users", r.handlers.AdminUser.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/bookings", r.handlers.AdminUser.GetUserBookings).Methods(http.MethodGet)

	admin.HandleFunc("/audit-logs", r.handlers.AuditLog.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.handlers.AuditLog.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.metrics.Middleware)

	// CORS wraps the router so preflight requests are answered even though
	// no route is registered for OPTIONS
	var h http.Handler = r.corsOr(r.router)
	if r.middlewares.RequestLogger != nil {
		h = r.middlewares.RequestLogger(h)
	}
	return h
}

func (r *Router) corsOr(next http.Handler) http.Handler {
	if r.middlewares.CORS == nil {
		return next
	}
	return r.middlewares.CORS.Handle(next)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
