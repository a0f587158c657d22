// Package metrics exposes Prometheus counters for HTTP traffic and ride
// board activity.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"carpool/internal/events"
	"carpool/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrefix prefixes every metric name.
const DefaultPrefix = "carpool"

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry
	prefix   string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SignUpsTotal      prometheus.Counter
	SessionsTotal     *prometheus.CounterVec
	RidesOfferedTotal *prometheus.CounterVec
	BookingsTotal     *prometheus.CounterVec
	RidesExpiredTotal prometheus.Counter
	ArchiveJobsTotal  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		prefix:   prefix,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SignUpsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_signups_total",
			Help: "Total number of employee signups",
		}),
		SessionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_session_changes_total",
				Help: "Total number of session changes",
			},
			[]string{"state"},
		),
		RidesOfferedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_rides_offered_total",
				Help: "Total number of rides offered",
			},
			[]string{"vehicle_type"},
		),
		BookingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_bookings_total",
				Help: "Total number of seats booked",
			},
			[]string{"vehicle_type"},
		),
		RidesExpiredTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_rides_expired_total",
			Help: "Total number of rides dropped at a day rollover",
		}),
		ArchiveJobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_archive_jobs_total",
				Help: "Total number of archive jobs by outcome",
			},
			[]string{"result"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ActiveRides registers a gauge read from count on every scrape.
func (m *Metrics) ActiveRides(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: m.prefix + "_active_rides",
			Help: "Number of rides on today's board",
		},
		func() float64 { return float64(count()) },
	))
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Observe counts directory and board events. Subscribe it to both.
func (m *Metrics) Observe(e events.Event) {
	switch e.Kind {
	case events.UserSignedUp:
		m.SignUpsTotal.Inc()
	case events.SessionChanged:
		state := "logged_in"
		if e.User == nil {
			state = "logged_out"
		}
		m.SessionsTotal.WithLabelValues(state).Inc()
	case events.RideAdded:
		for _, r := range e.Rides {
			m.RidesOfferedTotal.WithLabelValues(string(r.VehicleType)).Inc()
		}
	case events.RideBooked:
		for _, r := range e.Rides {
			m.BookingsTotal.WithLabelValues(string(r.VehicleType)).Inc()
		}
	case events.RidesExpired:
		m.RidesExpiredTotal.Add(float64(len(e.Rides)))
	}
}

// ArchiveDone counts a finished archive job. It matches the processor's
// completion hook.
func (m *Metrics) ArchiveDone(_ queue.ArchiveJob, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.ArchiveJobsTotal.WithLabelValues(result).Inc()
}
