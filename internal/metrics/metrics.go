package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resource: users / projects / images / ops / unmatched
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by resource and method",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by resource, route template, method and status class",
	}, []string{"resource", "route", "method", "status_class"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dependency_up",
		Help: "Dependency connectivity (1=up,0=down)",
	}, []string{"dep"})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Image upload attempts by result",
	}, []string{"result"})
	ImageUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_upload_bytes",
		Help:    "Size of accepted image uploads",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
	ListCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "list_cache_lookups_total",
		Help: "List cache lookups by collection and result",
	}, []string{"collection", "result"})
	OpLogPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oplog_publish_errors_total",
		Help: "Operation log events that failed to publish",
	})
)
