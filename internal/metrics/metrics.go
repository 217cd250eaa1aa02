// Package metrics collects and exposes Prometheus metrics for trendmix.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements youtube.Recorder and cache.Recorder.
type Collector struct {
	fetchSuccess    prometheus.Counter
	fetchFail       prometheus.Counter
	fetchLatency    prometheus.Histogram
	apiRequests     *prometheus.CounterVec
	apiLatency      *prometheus.HistogramVec
	cacheRequests   *prometheus.CounterVec
	snapshotRecords *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendmix_fetch_success_total",
			Help: "Successful trending chart fetches.",
		}),
		fetchFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendmix_fetch_fail_total",
			Help: "Failed trending chart fetches.",
		}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendmix_fetch_latency_seconds",
			Help:    "Time to list, resolve and aggregate one chart.",
			Buckets: prometheus.DefBuckets,
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendmix_api_requests_total",
			Help: "YouTube Data API calls by endpoint and HTTP status (0 = transport error).",
		}, []string{"endpoint", "status_code"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendmix_api_latency_seconds",
			Help:    "YouTube Data API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendmix_cache_requests_total",
			Help: "Cache lookups by result.",
		}, []string{"result"}),
		snapshotRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trendmix_snapshot_records",
			Help: "Records in the current snapshot.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.apiRequests,
		c.apiLatency,
		c.cacheRequests,
		c.snapshotRecords,
	)

	return c
}

// RecordAPICall counts one upstream request.
func (c *Collector) RecordAPICall(endpoint string, statusCode int, latency time.Duration) {
	c.apiRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	c.apiLatency.WithLabelValues(endpoint).Observe(latency.Seconds())
}

// RecordFetch counts one load attempt.
func (c *Collector) RecordFetch(err error, latency time.Duration) {
	if err != nil {
		c.fetchFail.Inc()
	} else {
		c.fetchSuccess.Inc()
	}
	c.fetchLatency.Observe(latency.Seconds())
}

// RecordCacheResult counts one cache lookup by result.
func (c *Collector) RecordCacheResult(result string) {
	c.cacheRequests.WithLabelValues(result).Inc()
}

// RecordSnapshot publishes the size of the newest snapshot.
func (c *Collector) RecordSnapshot(regular, shorts int) {
	c.snapshotRecords.WithLabelValues("regular").Set(float64(regular))
	c.snapshotRecords.WithLabelValues("shorts").Set(float64(shorts))
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
