// Package web exposes the deepsift scoring service over HTTP: the
// inference endpoint, health and metrics, and a websocket event feed.
package web

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deepsift/deepsift/pkg/classifier"
	"github.com/deepsift/deepsift/pkg/detect"
	"github.com/deepsift/deepsift/pkg/hub"
	"github.com/deepsift/deepsift/pkg/pipeline"
)

// ServiceName identifies this service in health payloads.
const ServiceName = "deepsift-scoring-service"

// Server is the HTTP front of the scoring pipeline.
type Server struct {
	app      *fiber.App
	pipeline *pipeline.Pipeline
	cls      classifier.Provider
	detector *detect.Manager
	events   *hub.Hub
	logger   *slog.Logger

	modelName    string
	modelVersion string
}

// Options configures the server.
type Options struct {
	Pipeline     *pipeline.Pipeline
	Classifier   classifier.Provider
	Detector     *detect.Manager
	ModelName    string
	ModelVersion string
	Logger       *slog.Logger
}

// NewServer builds the fiber app and wires all routes.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		pipeline:     opts.Pipeline,
		cls:          opts.Classifier,
		detector:     opts.Detector,
		events:       hub.New("events", logger),
		logger:       logger.With("component", "web"),
		modelName:    opts.ModelName,
		modelVersion: opts.ModelVersion,
	}

	app := fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		// Frame lists for long videos produce large request bodies.
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	app.Get("/health", s.handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Post("/inference", s.handleInference)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Listen starts the server and the event hub. It blocks.
func (s *Server) Listen(port string) error {
	go s.events.Run()
	s.logger.Info("listening", "port", port)
	return s.app.Listen(":" + port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleEventsWS subscribes one websocket client to the event feed.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	hub.Serve(s.events, c)
}
