// Package classifier wraps the external image classification service.
//
// The classifier is a black box behind an HTTP contract: it accepts a
// batch of encoded images and returns, per image, an ordered list of
// label/score pairs. Everything about the model itself (weights,
// training, vocabulary) lives in the collaborating service.
package classifier

import (
	"context"

	"github.com/deepsift/deepsift/pkg/scoring"
)

// BatchRequest is one batched classification call. Images are encoded
// (JPEG) bytes; one batched call per inference request amortizes the
// classifier's fixed overhead across frames.
type BatchRequest struct {
	Model  string
	Images [][]byte
}

// BatchResponse holds per-image results in input order. Results always
// has one entry per submitted image, even for a batch of one, so callers
// never special-case batch size.
type BatchResponse struct {
	Results   [][]scoring.LabelScore
	Model     string
	LatencyMs int64
}

// Provider is the interface to a classifier backend.
type Provider interface {
	// Classify scores a batch of images.
	Classify(ctx context.Context, req *BatchRequest) (*BatchResponse, error)

	// Health reports whether the backend is ready to serve.
	Health(ctx context.Context) error

	// Close releases resources.
	Close() error
}
