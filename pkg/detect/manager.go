package detect

import (
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the process-wide detector instance. Model assets are
// downloaded and loaded once, guarded by sync.Once so concurrent first
// use cannot trigger duplicate downloads; after initialization the
// detector handle is read-only and shared.
//
// A Manager whose initialization failed keeps returning the same error;
// the pipeline degrades to full-image classification in that case.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	once sync.Once
	det  Detector
	err  error
}

// NewManager creates a lazy detector manager. Nothing is downloaded or
// loaded until the first Get call.
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// NewStatic returns a Manager that serves an already-constructed
// detector. Used when the caller initializes the backend itself and in
// tests that inject a fake.
func NewStatic(det Detector) *Manager {
	m := &Manager{logger: slog.Default()}
	m.once.Do(func() { m.det = det })
	return m
}

// Get returns the shared detector, initializing it on first use.
func (m *Manager) Get() (Detector, error) {
	m.once.Do(func() {
		m.det, m.err = m.initialize()
		if m.err != nil {
			m.logger.Warn("face detector unavailable, requests fall back to full-image classification",
				"error", m.err)
			return
		}
		m.logger.Info("face detector initialized",
			"backend", m.det.Name(), "threshold", m.det.Threshold())
	})
	return m.det, m.err
}

// Backend reports the active backend name, or "none" when initialization
// failed. The read goes through Get so it is ordered after the one-time
// initialization regardless of who called first.
func (m *Manager) Backend() string {
	det, err := m.Get()
	if err != nil {
		return "none"
	}
	return det.Name()
}

// Close releases the detector if one was initialized. Closing a never-used
// Manager pins it unavailable instead of loading models on the way out.
func (m *Manager) Close() error {
	m.once.Do(func() {
		m.err = fmt.Errorf("%w: manager closed before use", ErrUnavailable)
	})
	if m.det == nil {
		return nil
	}
	return m.det.Close()
}

// initialize resolves the backend selection once: an explicit override
// wins, otherwise DNN is preferred with Haar as the fallback chain.
func (m *Manager) initialize() (Detector, error) {
	switch m.cfg.Backend {
	case "dnn":
		return newDNN(m.cfg.ModelDir)
	case "haar":
		return newHaar(m.cfg.ModelDir)
	}

	det, err := newDNN(m.cfg.ModelDir)
	if err == nil {
		return det, nil
	}
	m.logger.Warn("DNN face detector unavailable, trying Haar cascade", "error", err)
	return newHaar(m.cfg.ModelDir)
}
