// Package metrics defines the Prometheus collectors for the booking core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hotelmate"

// Metrics holds every collector the service and HTTP layers record to.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ReservationsCreated   prometheus.Counter
	ReservationsCancelled prometheus.Counter
	Transitions           *prometheus.CounterVec
	InventoryRejections   prometheus.Counter
	RoomsReleased         prometheus.Counter
	CorruptRecords        *prometheus.CounterVec
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReservationsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservations successfully created.",
		}),
		ReservationsCancelled: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_cancelled_total",
			Help:      "Reservations cancelled.",
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Reservation status transitions by target status.",
		}, []string{"to"}),
		InventoryRejections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_rejections_total",
			Help:      "Room reservations rejected for lack of availability.",
		}),
		RoomsReleased: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_rooms_released_total",
			Help:      "Rooms returned to hotel inventory.",
		}),
		CorruptRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corrupt_records_total",
			Help:      "Stored records skipped because they could not be decoded.",
		}, []string{"collection"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ReservationCreated records a persisted reservation.
func (m *Metrics) ReservationCreated() {
	if m == nil {
		return
	}
	m.ReservationsCreated.Inc()
}

// Transition records a status change. Cancellations are also counted separately.
func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(to).Inc()
	if to == "cancelled" {
		m.ReservationsCancelled.Inc()
	}
}

// InventoryRejected records a reserve attempt that found too few rooms.
func (m *Metrics) InventoryRejected() {
	if m == nil {
		return
	}
	m.InventoryRejections.Inc()
}

// Released records rooms returned to inventory.
func (m *Metrics) Released(rooms int) {
	if m == nil {
		return
	}
	m.RoomsReleased.Add(float64(rooms))
}

// CorruptRecord records a skipped record from collection.
func (m *Metrics) CorruptRecord(collection string) {
	if m == nil {
		return
	}
	m.CorruptRecords.WithLabelValues(collection).Inc()
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}
