package classifier

import (
	"context"
	"sync"

	"github.com/deepsift/deepsift/pkg/scoring"
)

// Mock implements Provider for testing.
type Mock struct {
	// ClassifyFunc is called when Classify is invoked.
	ClassifyFunc func(ctx context.Context, req *BatchRequest) (*BatchResponse, error)

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

// NewMock creates a mock that labels every image "Real" at 0.8.
func NewMock() *Mock {
	return &Mock{
		ClassifyFunc: func(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
			results := make([][]scoring.LabelScore, len(req.Images))
			for i := range results {
				results[i] = []scoring.LabelScore{
					{Label: "Real", Score: 0.8},
					{Label: "Fake", Score: 0.2},
				}
			}
			return &BatchResponse{Results: results, Model: req.Model}, nil
		},
		HealthFunc: func(ctx context.Context) error { return nil },
	}
}

// Classify calls ClassifyFunc and records the call.
func (m *Mock) Classify(ctx context.Context, req *BatchRequest) (*BatchResponse, error) {
	m.record("Classify")
	if len(req.Images) == 0 {
		return nil, ErrEmptyBatch
	}
	return m.ClassifyFunc(ctx, req)
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health")
	return m.HealthFunc(ctx)
}

// Close records the call.
func (m *Mock) Close() error {
	m.record("Close")
	return nil
}

// Calls returns the recorded method names in order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Mock) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
}
