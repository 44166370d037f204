package classifier

import (
	"log/slog"
	"time"
)

// Config holds classifier client configuration.
type Config struct {
	// BaseURL of the classifier service.
	BaseURL string

	// Model requested per batch (the service may ignore it).
	Model string

	// Timeout for one batch call. Batches of 30 face crops take a
	// while on CPU-only classifier hosts.
	Timeout time.Duration

	// Logger for request-level diagnostics.
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL sets the classifier service URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the model name sent with each batch.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithTimeout sets the per-batch request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns defaults for a local classifier sidecar.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:8080",
		Model:   "deepfake-detect-siglip2",
		Timeout: 60 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
