// Package metrics exposes prometheus instrumentation for the scoring
// pipeline.
//
// The no-face counter matters most operationally: frames classified
// without a face crop are a degraded-quality path that looks like a
// normal 200 response, so it must be visible on a dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks end-to-end inference latency per media type.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepsift_inference_duration_seconds",
			Help:    "End-to-end inference request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"media_type"},
	)

	// ClassifierBatchDuration tracks the external classifier call.
	ClassifierBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deepsift_classifier_batch_duration_seconds",
			Help:    "Duration of batched classifier calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// FramesProcessed counts frames that went through the pipeline.
	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deepsift_frames_processed_total",
			Help: "Total number of frames scored",
		},
	)

	// FacesDetected counts frames where a face crop was used.
	FacesDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deepsift_faces_detected_total",
			Help: "Total number of frames classified from a face crop",
		},
	)

	// NoFaceFrames counts frames classified from the full image because
	// no face passed the detector threshold.
	NoFaceFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deepsift_no_face_frames_total",
			Help: "Total number of frames classified without a face crop",
		},
	)

	// RequestErrors counts failed inference requests by reason.
	RequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepsift_request_errors_total",
			Help: "Total number of failed inference requests",
		},
		[]string{"reason"}, // "invalid_input", "unsupported_media", "classifier_unavailable", "internal"
	)
)
