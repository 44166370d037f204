// Package pipeline orchestrates one inference request: frame sampling,
// face localization, the batched classifier call and score aggregation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deepsift/deepsift/pkg/classifier"
	"github.com/deepsift/deepsift/pkg/detect"
	"github.com/deepsift/deepsift/pkg/facecrop"
	"github.com/deepsift/deepsift/pkg/frames"
	"github.com/deepsift/deepsift/pkg/metrics"
	"github.com/deepsift/deepsift/pkg/scoring"
)

// Input validation errors, surfaced to the caller and never retried.
var (
	// ErrNoFrames is returned when a request names no frame files.
	ErrNoFrames = errors.New("pipeline: no frame paths provided")

	// ErrUnsupportedMedia is returned for AUDIO requests: the image
	// classifier has no audio path and guessing would be worse than
	// refusing.
	ErrUnsupportedMedia = errors.New("pipeline: media type not supported by image classifier")

	// ErrUnknownMedia is returned for media types outside the contract.
	ErrUnknownMedia = errors.New("pipeline: unknown media type")
)

// cropWorkers bounds the per-request face localization fan-out. Frames
// are independent until aggregation, but decode memory is not free.
const cropWorkers = 4

// Config holds pipeline tuning.
type Config struct {
	// MaxFrames caps how many video frames are scored per request
	// (<= 0 means all).
	MaxFrames int

	// PaddingPercent is the face crop padding.
	PaddingPercent float64

	// Mapper resolves classifier label semantics (scoring.MapLabel
	// when nil).
	Mapper scoring.LabelMapper

	// Logger for request diagnostics.
	Logger *slog.Logger
}

// Request is one scoring request.
type Request struct {
	Hash         string
	Media        scoring.MediaType
	ModelVersion string
	FramePaths   []string
}

// Result is the outcome of a scored request.
type Result struct {
	Report          scoring.Report
	ModelVersion    string
	FramesProcessed int
	FacesDetected   int
	InferenceTime   time.Duration
}

// Pipeline wires the detector, the classifier and the scoring core.
// It is safe for concurrent use across requests.
type Pipeline struct {
	detector   *detect.Manager
	classifier classifier.Provider
	cfg        Config
	logger     *slog.Logger

	// cropJPEG is detect.CropJPEG, swappable in tests where no OpenCV
	// build is available.
	cropJPEG func(encoded []byte, region facecrop.Box) ([]byte, error)
}

// New creates a pipeline. The detector manager may be one whose backend
// failed to initialize; requests then classify full frames.
func New(det *detect.Manager, cls classifier.Provider, cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		detector:   det,
		classifier: cls,
		cfg:        cfg,
		logger:     logger.With("component", "pipeline"),
		cropJPEG:   detect.CropJPEG,
	}
}

// Run scores one request.
func (p *Pipeline) Run(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	paths, err := p.selectPaths(req)
	if err != nil {
		return nil, err
	}

	loaded, err := frames.Load(paths, p.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFrames, err)
	}

	crops, facesDetected := p.localizeFaces(loaded)

	batchStart := time.Now()
	resp, err := p.classifier.Classify(ctx, &classifier.BatchRequest{
		Model:  req.ModelVersion,
		Images: crops,
	})
	if err != nil {
		return nil, err
	}
	metrics.ClassifierBatchDuration.Observe(time.Since(batchStart).Seconds())

	probs := make([]float64, len(resp.Results))
	for i, result := range resp.Results {
		probs[i] = scoring.FakeProbability(result, p.cfg.Mapper)
	}

	report, err := scoring.Aggregate(probs, req.Media)
	if err != nil {
		// Non-empty input was guaranteed above; this is a pipeline bug.
		return nil, fmt.Errorf("pipeline: aggregation failed: %w", err)
	}

	metrics.FramesProcessed.Add(float64(len(loaded)))

	p.logger.Info("request scored",
		"hash", shortHash(req.Hash),
		"media", req.Media,
		"frames", len(loaded),
		"faces", facesDetected,
		"risk_score", report.RiskScore,
		"confidence", report.Confidence,
		"duration_ms", time.Since(start).Milliseconds())

	return &Result{
		Report:          report,
		ModelVersion:    req.ModelVersion,
		FramesProcessed: len(loaded),
		FacesDetected:   facesDetected,
		InferenceTime:   time.Since(start),
	}, nil
}

// selectPaths validates the request and picks the frames to score.
func (p *Pipeline) selectPaths(req *Request) ([]string, error) {
	if len(req.FramePaths) == 0 {
		return nil, ErrNoFrames
	}

	switch req.Media {
	case scoring.MediaImage:
		// A still image is scored from its first (only) frame.
		return req.FramePaths[:1], nil
	case scoring.MediaVideo:
		return frames.Sample(req.FramePaths, p.cfg.MaxFrames), nil
	case scoring.MediaAudio:
		return nil, ErrUnsupportedMedia
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMedia, req.Media)
	}
}

// localizeFaces produces the classifier input for each frame: the padded
// square face crop when a face is found, the full frame otherwise. Frames
// are processed concurrently; output order matches input order.
func (p *Pipeline) localizeFaces(loaded []frames.Frame) (crops [][]byte, facesDetected int) {
	crops = make([][]byte, len(loaded))
	detected := make([]bool, len(loaded))

	det, err := p.detector.Get()
	if err != nil {
		// Degraded path: full frames go to the classifier unchanged.
		for i := range loaded {
			crops[i] = loaded[i].Data
			metrics.NoFaceFrames.Inc()
		}
		return crops, 0
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, cropWorkers)
	for i := range loaded {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			crops[i], detected[i] = p.cropFace(det, loaded[i])
		}(i)
	}
	wg.Wait()

	for i := range detected {
		if detected[i] {
			facesDetected++
			metrics.FacesDetected.Inc()
		} else {
			metrics.NoFaceFrames.Inc()
		}
	}
	return crops, facesDetected
}

// cropFace returns the face crop for one frame, or the full frame when
// no face is found or the crop fails. The fallback is a documented
// degraded-quality outcome, not an error: the classifier still sees the
// frame, just without the crop it was trained on.
func (p *Pipeline) cropFace(det detect.Detector, frame frames.Frame) ([]byte, bool) {
	result, err := det.Detect(frame.Data)
	if err != nil {
		p.logger.Warn("face detection failed, using full frame",
			"path", frame.Path, "error", err)
		return frame.Data, false
	}

	best := facecrop.SelectLargest(result.Faces, det.Threshold(), result.Width, result.Height)
	if best == nil {
		p.logger.Debug("no face detected, using full frame",
			"path", frame.Path, "width", result.Width, "height", result.Height)
		return frame.Data, false
	}

	region := facecrop.Square(result.Width, result.Height, best.Box, p.cfg.PaddingPercent)
	crop, err := p.cropJPEG(frame.Data, region)
	if err != nil {
		p.logger.Warn("face crop failed, using full frame",
			"path", frame.Path, "error", err)
		return frame.Data, false
	}

	return crop, true
}

// shortHash truncates content hashes for logging.
func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
