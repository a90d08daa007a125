package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all rtlink metrics.
type Registry struct {
	// Kernel round trips
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Link creation
	CreateAttempts prometheus.Counter
	IndexRaces     prometheus.Counter

	// Notifications
	Notifications *prometheus.CounterVec

	// Link inventory, refreshed by Collector
	Links *prometheus.GaugeVec
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = New(prometheus.DefaultRegisterer)
	})
	return registry
}

// New registers a fresh set of metrics with reg.
func New(reg prometheus.Registerer) *Registry {
	f := promauto.With(reg)
	r := &Registry{}

	r.Requests = f.NewCounterVec(prometheus.CounterOpts{
		Name: "rtlink_requests_total",
		Help: "Link requests sent to the kernel, by operation and result",
	}, []string{"op", "result"})

	r.RequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rtlink_request_duration_seconds",
		Help:    "Round-trip latency of link requests",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"op"})

	r.CreateAttempts = f.NewCounter(prometheus.CounterOpts{
		Name: "rtlink_create_attempts_total",
		Help: "Create-if-absent attempts made while creating links",
	})

	r.IndexRaces = f.NewCounter(prometheus.CounterOpts{
		Name: "rtlink_index_races_total",
		Help: "Create attempts that lost the interface index race (EEXIST)",
	})

	r.Notifications = f.NewCounterVec(prometheus.CounterOpts{
		Name: "rtlink_notifications_total",
		Help: "Unsolicited link notifications received, by type",
	}, []string{"type"})

	r.Links = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rtlink_links",
		Help: "Links currently present, by kind and operational state",
	}, []string{"kind", "operstate"})

	return r
}

// RecordRequest records one kernel round trip.
func (r *Registry) RecordRequest(op string, err error, d time.Duration) {
	if r == nil {
		return
	}
	r.Requests.WithLabelValues(op, resultString(err)).Inc()
	r.RequestDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordCreateAttempt records one create-if-absent attempt.
func (r *Registry) RecordCreateAttempt(raced bool) {
	if r == nil {
		return
	}
	r.CreateAttempts.Inc()
	if raced {
		r.IndexRaces.Inc()
	}
}

// RecordNotification counts one unsolicited message.
func (r *Registry) RecordNotification(kind string) {
	if r == nil {
		return
	}
	r.Notifications.WithLabelValues(kind).Inc()
}

func resultString(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
