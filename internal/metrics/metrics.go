// Package metrics declares the Prometheus collectors of the try-on service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tryon_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tryon_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	TryOnOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tryon_outcomes_total",
			Help: "Try-on results by garment type and outcome",
		},
		[]string{"garment_type", "outcome"},
	)

	LandmarkSources = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tryon_landmark_sources_total",
			Help: "Landmark sets by source (contour or fallback)",
		},
		[]string{"source"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tryon_pipeline_duration_seconds",
			Help:    "Duration of pipeline runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	PipelineActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tryon_pipeline_active",
			Help: "Number of pipeline runs currently executing",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tryon_cache_lookups_total",
			Help: "Render cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	Rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tryon_rejections_total",
			Help: "Requests rejected before processing, by reason",
		},
		[]string{"reason"},
	)
)
