package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// GallerySavesTotal counts reconciler outcomes: ok, invalid_input,
	// empty_name, need_confirm, not_found, error.
	GallerySavesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_saves_total",
			Help: "Total number of gallery save attempts by result",
		},
		[]string{"result"},
	)

	GallerySearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_searches_total",
			Help: "Total number of gallery searches",
		},
	)
)
