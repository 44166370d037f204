// Package detect provides face detection backends for crop preparation.
//
// Two OpenCV backends are available when built with the gocv tag: a DNN
// detector (SSD with ResNet-10 backbone, high recall) and a Haar cascade
// fallback. Builds without the tag get a stub backend so the pure scoring
// pipeline still compiles and runs, degraded to full-image classification.
package detect

import (
	"errors"

	"github.com/deepsift/deepsift/pkg/facecrop"
)

// Sentinel errors.
var (
	// ErrUnavailable is returned when no detector backend could be
	// initialized. Callers treat it as the "no face" degraded path.
	ErrUnavailable = errors.New("detect: no detector backend available")

	// ErrBadImage is returned for undecodable image data.
	ErrBadImage = errors.New("detect: cannot decode image")
)

// Result holds the detections for one image together with its pixel
// dimensions, which the crop geometry needs for clamping.
type Result struct {
	Width  int
	Height int
	Faces  []facecrop.Detection
}

// Detector is the interface for face detection backends.
type Detector interface {
	// Detect finds faces in the encoded (JPEG/PNG) image.
	Detect(encoded []byte) (Result, error)

	// Threshold is the selector confidence threshold appropriate for
	// this backend's score distribution.
	Threshold() float64

	// Name identifies the backend for logs and health reporting.
	Name() string

	// Close releases backend resources.
	Close() error
}

// Config holds detector configuration.
type Config struct {
	// ModelDir is where model assets are downloaded and cached.
	ModelDir string

	// Backend forces a specific backend: "dnn", "haar" or "" for
	// auto-selection (DNN first, Haar fallback).
	Backend string
}
