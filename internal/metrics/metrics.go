// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_api_predictions_total",
			Help: "Prediction requests by outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_api_inference_duration_seconds",
			Help:    "Time spent in preprocessing and model inference",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"endpoint"},
	)

	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_api_model_loads_total",
			Help: "Model load attempts",
		},
		[]string{"result"},
	)

	SinkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_api_sink_failures_total",
			Help: "Diagnostic image saves that failed",
		},
	)
)
