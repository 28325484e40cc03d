package sitemap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace prefixes all resolver metrics.
const MetricsNamespace = "sitemap"

// Fetch outcomes besides the FetchError types.
const (
	outcomeOK       = "ok"
	outcomeError    = "error"
	outcomeEmpty    = "empty"
	outcomeCanceled = "canceled"
)

// Metrics holds the Prometheus collectors for sitemap resolution.
type Metrics struct {
	FetchesTotal       *prometheus.CounterVec
	SkippedTotal       *prometheus.CounterVec
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration prometheus.Histogram
	ResolutionURLs     prometheus.Histogram
}

// NewMetrics creates and registers the resolver metrics on reg, or on the
// default registerer when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "fetches_total",
				Help:      "Sitemap documents fetched, by outcome (ok or error type)",
			},
			[]string{"outcome"},
		),
		SkippedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "skipped_total",
				Help:      "Sitemap URLs not fetched, by reason",
			},
			[]string{"reason"},
		),
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "resolutions_total",
				Help:      "Resolution runs, by outcome",
			},
			[]string{"outcome"},
		),
		ResolutionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "resolution_duration_seconds",
				Help:      "Wall-clock duration of a resolution run",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
		),
		ResolutionURLs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "resolution_urls",
				Help:      "Distinct page URLs returned per resolution run",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}
}

// The resolver calls these through a possibly nil *Metrics.

func (m *Metrics) fetched(outcome string) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) skipped(reason SkipReason) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) resolved(outcome string, took time.Duration, urls int) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.Observe(took.Seconds())
	m.ResolutionURLs.Observe(float64(urls))
}
