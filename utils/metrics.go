package utils

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ReservationsTotal  *prometheus.CounterVec
	ConfirmationsTotal *prometheus.CounterVec
	SchedulesSubmitted *prometheus.CounterVec
	SlotsListed        prometheus.Histogram
	RemindersSent      prometheus.Counter
}

// NewMetrics registers collectors on reg. Pass prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ReservationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "reservations_total",
			Help:      "Reserve attempts by outcome code.",
		}, []string{"outcome"}),

		ConfirmationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "confirmations_total",
			Help:      "Confirm attempts by outcome code.",
		}, []string{"outcome"}),

		SchedulesSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "schedule_submissions_total",
			Help:      "Schedule submissions by outcome code.",
		}, []string{"outcome"}),

		SlotsListed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "availability",
			Name:      "slots_listed",
			Help:      "Number of available slots matched per query before pagination.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		RemindersSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "sent_total",
			Help:      "Hold reminders delivered to clients.",
		}),
	}
}

// Outcome is the label recorded for err: "ok", an AppError code, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "error"
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
