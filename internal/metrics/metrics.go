// Package metrics holds the Prometheus collectors for HTTP traffic and
// domain events.
//
// Collectors are registered on the registry passed to New rather than the
// global default, so tests can build as many instances as they like. Every
// recording method is safe on a nil *Metrics, which services use when no
// metrics are wired.
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "videohub"

// Metrics is the set of collectors exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	logins        *prometheus.CounterVec
	registrations prometheus.Counter
	channels      *prometheus.CounterVec
	videos        *prometheus.CounterVec
	views         prometheus.Counter
	reactions     *prometheus.CounterVec
	subscriptions *prometheus.CounterVec
	comments      *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds, by route, method and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),

		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by method (password, github) and result.",
		}, []string{"method", "result"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts created with email and password.",
		}),
		channels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_events_total",
			Help:      "Channel lifecycle events, by event.",
		}, []string{"event"}),
		videos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_events_total",
			Help:      "Video lifecycle events, by event.",
		}, []string{"event"}),
		views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_views_total",
			Help:      "Video views counted.",
		}),
		reactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_reactions_total",
			Help:      "Like and dislike toggles, by requested reaction and resulting state.",
		}, []string{"reaction", "state"}),
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_toggles_total",
			Help:      "Subscribe toggles, by action (subscribe, unsubscribe).",
		}, []string{"action"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_events_total",
			Help:      "Comment events, by event.",
		}, []string{"event"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RequestsInFlight,
		m.logins,
		m.registrations,
		m.channels,
		m.videos,
		m.views,
		m.reactions,
		m.subscriptions,
		m.comments,
	)

	return m
}

// RegisterDB exposes the connection pool statistics of db.
func (m *Metrics) RegisterDB(db *sql.DB) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, "videohub"))
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Login(method string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.logins.WithLabelValues(method, result).Inc()
}

func (m *Metrics) Registered() {
	if m == nil {
		return
	}
	m.registrations.Inc()
}

func (m *Metrics) ChannelEvent(event string) {
	if m == nil {
		return
	}
	m.channels.WithLabelValues(event).Inc()
}

func (m *Metrics) VideoEvent(event string) {
	if m == nil {
		return
	}
	m.videos.WithLabelValues(event).Inc()
}

func (m *Metrics) VideoViewed() {
	if m == nil {
		return
	}
	m.views.Inc()
}

func (m *Metrics) Reaction(requested, state string) {
	if m == nil {
		return
	}
	if state == "" {
		state = "none"
	}
	m.reactions.WithLabelValues(requested, state).Inc()
}

func (m *Metrics) Subscription(subscribed bool) {
	if m == nil {
		return
	}
	action := "unsubscribe"
	if subscribed {
		action = "subscribe"
	}
	m.subscriptions.WithLabelValues(action).Inc()
}

func (m *Metrics) CommentEvent(event string) {
	if m == nil {
		return
	}
	m.comments.WithLabelValues(event).Inc()
}
