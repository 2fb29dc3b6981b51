package observability

import (
	"time"

	"github.com/oblozinskyroman/stars/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	listingQueries  *prometheus.CounterVec
	staleDropped    prometheus.Counter
	honeypotDrops   *prometheus.CounterVec
	assistantTotal  *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stars_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		listingQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_listing_queries_total",
				Help: "Total company listing queries by sort key.",
			},
			[]string{"sort"},
		),
		staleDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stars_listing_stale_dropped_total",
				Help: "Listing responses discarded because a newer query superseded them.",
			},
		),
		honeypotDrops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_honeypot_drops_total",
				Help: "Form submissions silently dropped by the honeypot.",
			},
			[]string{"form"},
		),
		assistantTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stars_assistant_requests_total",
				Help: "Total assistant requests by outcome.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrListingQuery counts one listing query for the given sort key.
func (m *Metrics) IncrListingQuery(sort string) {
	if sort == "" {
		sort = domain.SortBestMatch
	}
	m.listingQueries.WithLabelValues(sort).Inc()
}

// IncrStaleDropped counts one listing response dropped as stale.
func (m *Metrics) IncrStaleDropped() {
	m.staleDropped.Inc()
}

// IncrHoneypotDrop counts one silently dropped form submission.
func (m *Metrics) IncrHoneypotDrop(form string) {
	m.honeypotDrops.WithLabelValues(form).Inc()
}

// IncrAssistant counts one assistant call with an outcome label.
func (m *Metrics) IncrAssistant(status string) {
	m.assistantTotal.WithLabelValues(status).Inc()
}

// GetSiteSnapshot returns a snapshot of site metrics suitable for the
// GET /v1/metrics/site endpoint.
func (m *Metrics) GetSiteSnapshot() *domain.SiteMetrics {
	listingTotal := float64(0)
	for _, sort := range []string{
		domain.SortBestMatch, domain.SortRating, domain.SortNewest,
		domain.SortName, domain.SortReviewCount,
	} {
		listingTotal += getCounterValue(m.listingQueries, sort)
	}

	honeypot := getCounterValue(m.honeypotDrops, "provider") +
		getCounterValue(m.honeypotDrops, "contact")
	external := getCounterValue(m.externalErrors, "supabase/companies") +
		getCounterValue(m.externalErrors, "supabase/profiles") +
		getCounterValue(m.externalErrors, "supabase/inquiries") +
		getCounterValue(m.externalErrors, "supabase/contact") +
		getCounterValue(m.externalErrors, "supabase/auth") +
		getCounterValue(m.externalErrors, "assistant")
	cacheHits := getCounterValue(m.cacheHits, "listing")
	cacheMisses := getCounterValue(m.cacheMisses, "listing")
	assistantOK := getCounterValue(m.assistantTotal, "success")
	assistantErr := getCounterValue(m.assistantTotal, "error")

	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}
	assistantErrorRate := float64(0)
	if assistantOK+assistantErr > 0 {
		assistantErrorRate = assistantErr / (assistantOK + assistantErr)
	}

	return &domain.SiteMetrics{
		ListingQueries:     int64(listingTotal),
		StaleDropped:       int64(counterValue(m.staleDropped)),
		HoneypotDrops:      int64(honeypot),
		ExternalErrors:     int64(external),
		CacheHitRate:       cacheHitRate,
		AssistantRequests:  int64(assistantOK + assistantErr),
		AssistantErrorRate: assistantErrorRate,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
