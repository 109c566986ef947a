package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fooddelivering"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	itemsCreated     prometheus.Counter
	usersRegistered  *prometheus.CounterVec
	logins           *prometheus.CounterVec
	usersUpdated     prometheus.Counter
	donationsCreated *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
}

// NewPrometheus creates a recorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		itemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_created_total",
			Help:      "Items created.",
		}),
		usersRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Users registered by sign-up method.",
		}, []string{"method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		usersUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_updated_total",
			Help:      "Partial user updates applied.",
		}),
		donationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donations_created_total",
			Help:      "Donations created, split by whether an image was attached.",
		}, []string{"image"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by cache name and result.",
		}, []string{"cache", "result"}),
	}

	reg.MustRegister(
		p.httpRequests,
		p.httpDuration,
		p.itemsCreated,
		p.usersRegistered,
		p.logins,
		p.usersUpdated,
		p.donationsCreated,
		p.cacheLookups,
	)

	return p
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncItemCreated() {
	p.itemsCreated.Inc()
}

func (p *PrometheusRecorder) IncUserRegistered(method string) {
	p.usersRegistered.WithLabelValues(method).Inc()
}

func (p *PrometheusRecorder) IncLogin(method, outcome string) {
	p.logins.WithLabelValues(method, outcome).Inc()
}

func (p *PrometheusRecorder) IncUserUpdated() {
	p.usersUpdated.Inc()
}

func (p *PrometheusRecorder) IncDonationCreated(withImage bool) {
	p.donationsCreated.WithLabelValues(strconv.FormatBool(withImage)).Inc()
}

func (p *PrometheusRecorder) IncCacheHit(cache string) {
	p.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (p *PrometheusRecorder) IncCacheMiss(cache string) {
	p.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// Handler serves the exposition format for everything registered in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
