package web

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deepsift/deepsift/pkg/classifier"
	"github.com/deepsift/deepsift/pkg/metrics"
	"github.com/deepsift/deepsift/pkg/pipeline"
	"github.com/deepsift/deepsift/pkg/scoring"
)

// healthTimeout bounds the classifier readiness probe.
const healthTimeout = 5 * time.Second

// inferenceRequest is the inference endpoint body.
type inferenceRequest struct {
	Hash            string   `json:"hash"`
	MediaType       string   `json:"mediaType"`
	ModelVersion    string   `json:"modelVersion"`
	ExtractedFrames []string `json:"extractedFrames"`
	ExtractedAudio  string   `json:"extractedAudio,omitempty"`
}

// inferenceResponse mirrors the legacy scoring contract, snake_case.
type inferenceResponse struct {
	VideoScore          float64 `json:"video_score"`
	PeakRisk            float64 `json:"peak_risk"`
	MeanRisk            float64 `json:"mean_risk"`
	AudioScore          float64 `json:"audio_score"`
	GANFingerprint      float64 `json:"gan_fingerprint"`
	TemporalConsistency float64 `json:"temporal_consistency"`
	RiskScore           float64 `json:"risk_score"`
	Confidence          float64 `json:"confidence"`
	ModelVersion        string  `json:"model_version"`
	InferenceTime       int64   `json:"inference_time"`
}

// errorResponse is the error body shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// inferenceEvent is broadcast to websocket subscribers per request.
type inferenceEvent struct {
	Time       string  `json:"time"`
	RequestID  string  `json:"request_id"`
	Hash       string  `json:"hash,omitempty"`
	MediaType  string  `json:"media_type"`
	RiskScore  float64 `json:"risk_score"`
	Confidence float64 `json:"confidence"`
	Frames     int     `json:"frames"`
	Faces      int     `json:"faces"`
	DurationMs int64   `json:"duration_ms"`
}

// handleInference scores one media item.
func (s *Server) handleInference(c *fiber.Ctx) error {
	start := time.Now()
	requestID := uuid.NewString()

	var req inferenceRequest
	if err := c.BodyParser(&req); err != nil {
		metrics.RequestErrors.WithLabelValues("invalid_input").Inc()
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error:   "Invalid request",
			Message: "Request body must be JSON",
		})
	}

	media := scoring.MediaType(strings.ToUpper(req.MediaType))
	modelVersion := req.ModelVersion
	if modelVersion == "" {
		modelVersion = s.modelVersion
	}

	logger := s.logger.With("request_id", requestID)
	logger.Info("inference request",
		"hash", shortHash(req.Hash), "media", media,
		"frames", len(req.ExtractedFrames), "model", modelVersion)

	result, err := s.pipeline.Run(c.Context(), &pipeline.Request{
		Hash:         req.Hash,
		Media:        media,
		ModelVersion: modelVersion,
		FramePaths:   req.ExtractedFrames,
	})
	if err != nil {
		return s.inferenceError(c, logger, media, err)
	}

	metrics.RequestDuration.WithLabelValues(string(media)).Observe(time.Since(start).Seconds())

	s.events.BroadcastJSON(inferenceEvent{
		Time:       time.Now().UTC().Format(time.RFC3339),
		RequestID:  requestID,
		Hash:       shortHash(req.Hash),
		MediaType:  string(media),
		RiskScore:  result.Report.RiskScore,
		Confidence: result.Report.Confidence,
		Frames:     result.FramesProcessed,
		Faces:      result.FacesDetected,
		DurationMs: time.Since(start).Milliseconds(),
	})

	report := result.Report
	return c.JSON(inferenceResponse{
		VideoScore:          report.VideoScore,
		PeakRisk:            report.PeakRisk,
		MeanRisk:            report.MeanRisk,
		AudioScore:          report.AudioScore,
		GANFingerprint:      report.GANFingerprint,
		TemporalConsistency: report.TemporalConsistency,
		RiskScore:           report.RiskScore,
		Confidence:          report.Confidence,
		ModelVersion:        modelVersion,
		InferenceTime:       time.Since(start).Milliseconds(),
	})
}

// inferenceError translates pipeline failures into HTTP responses.
func (s *Server) inferenceError(c *fiber.Ctx, logger *slog.Logger, media scoring.MediaType, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedMedia):
		metrics.RequestErrors.WithLabelValues("unsupported_media").Inc()
		logger.Warn("unsupported media type", "media", media)
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error:   "Unsupported media type",
			Message: "audio-only inference is not supported by the image classifier",
		})

	case errors.Is(err, pipeline.ErrNoFrames), errors.Is(err, pipeline.ErrUnknownMedia):
		metrics.RequestErrors.WithLabelValues("invalid_input").Inc()
		logger.Warn("invalid inference input", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error:   "Invalid request",
			Message: err.Error(),
		})

	case classifier.Unavailable(err):
		metrics.RequestErrors.WithLabelValues("classifier_unavailable").Inc()
		logger.Warn("classifier unavailable", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{
			Error:   "Service Unavailable",
			Message: "classifier service is not ready",
		})

	default:
		metrics.RequestErrors.WithLabelValues("internal").Inc()
		logger.Error("inference failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Error:   "Inference failed",
			Message: err.Error(),
		})
	}
}

// healthResponse is the health endpoint body.
type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Model       string `json:"model"`
	ModelStatus string `json:"model_status"`
	Detector    string `json:"detector"`
	Timestamp   string `json:"timestamp"`
}

// handleHealth reports readiness. The service is healthy only when the
// classifier collaborator can take batches; the face detector is allowed
// to be absent since the pipeline degrades gracefully without it.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), healthTimeout)
	defer cancel()

	status := "healthy"
	modelStatus := "loaded"
	code := fiber.StatusOK
	if err := s.cls.Health(ctx); err != nil {
		status = "unhealthy"
		modelStatus = "not_loaded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(healthResponse{
		Status:      status,
		Service:     ServiceName,
		Model:       s.modelName,
		ModelStatus: modelStatus,
		Detector:    s.detector.Backend(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

// shortHash truncates content hashes for logging.
func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
