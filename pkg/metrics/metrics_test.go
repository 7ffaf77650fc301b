package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.BookingTransition("PENDING", "CONFIRMED")
	m.Notification("booking.created", "sent")

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestBookingTransition(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.BookingTransition("", "PENDING")
	m.BookingTransition("PENDING", "CONFIRMED")
	m.BookingTransition("PENDING", "CONFIRMED")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("NONE", "PENDING")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingTransitions.WithLabelValues("PENDING", "CONFIRMED")))
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/abc", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/bookings/{id}", http.MethodGet, "404")))
}
