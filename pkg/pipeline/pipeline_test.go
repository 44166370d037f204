package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/deepsift/deepsift/pkg/classifier"
	"github.com/deepsift/deepsift/pkg/detect"
	"github.com/deepsift/deepsift/pkg/facecrop"
	"github.com/deepsift/deepsift/pkg/scoring"
)

// fakeDetector reports one centered face per frame.
type fakeDetector struct {
	faces []facecrop.Detection
	fail  bool
}

func (d *fakeDetector) Detect(encoded []byte) (detect.Result, error) {
	if d.fail {
		return detect.Result{}, detect.ErrBadImage
	}
	return detect.Result{Width: 640, Height: 480, Faces: d.faces}, nil
}

func (d *fakeDetector) Threshold() float64 { return 0.3 }
func (d *fakeDetector) Name() string       { return "fake" }
func (d *fakeDetector) Close() error       { return nil }

func writeFrames(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("frame_%03d.jpg", i))
		if err := os.WriteFile(paths[i], []byte(fmt.Sprintf("frame-%d", i)), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func newTestPipeline(det detect.Detector, cls classifier.Provider) *Pipeline {
	p := New(detect.NewStatic(det), cls, Config{
		MaxFrames:      30,
		PaddingPercent: 30,
	})
	// Crop without OpenCV: tag the payload so tests can tell crops from
	// full frames.
	p.cropJPEG = func(encoded []byte, region facecrop.Box) ([]byte, error) {
		return append([]byte("crop:"), encoded...), nil
	}
	return p
}

func TestRunVideoScoresCrops(t *testing.T) {
	det := &fakeDetector{faces: []facecrop.Detection{
		{Box: facecrop.Box{X: 100, Y: 100, W: 80, H: 80}, Confidence: 0.95},
	}}

	var gotBatch [][]byte
	cls := classifier.NewMock()
	cls.ClassifyFunc = func(ctx context.Context, req *classifier.BatchRequest) (*classifier.BatchResponse, error) {
		gotBatch = req.Images
		results := make([][]scoring.LabelScore, len(req.Images))
		for i := range results {
			results[i] = []scoring.LabelScore{{Label: "Fake", Score: 0.9}}
		}
		return &classifier.BatchResponse{Results: results}, nil
	}

	p := newTestPipeline(det, cls)
	res, err := p.Run(context.Background(), &Request{
		Hash:         "abc123",
		Media:        scoring.MediaVideo,
		ModelVersion: "v2",
		FramePaths:   writeFrames(t, 5),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(gotBatch) != 5 {
		t.Fatalf("expected one batched call with 5 images, got %d", len(gotBatch))
	}
	for i, img := range gotBatch {
		if string(img[:5]) != "crop:" {
			t.Errorf("image %d was not cropped", i)
		}
	}
	if res.FacesDetected != 5 {
		t.Errorf("FacesDetected = %d, want 5", res.FacesDetected)
	}
	if res.FramesProcessed != 5 {
		t.Errorf("FramesProcessed = %d, want 5", res.FramesProcessed)
	}
	if res.Report.RiskScore != 90.0 {
		t.Errorf("RiskScore = %v, want 90 for uniform 0.9 frames", res.Report.RiskScore)
	}
	if res.Report.TemporalConsistency != 100.0 {
		t.Errorf("TemporalConsistency = %v, want 100 for uniform frames", res.Report.TemporalConsistency)
	}
}

func TestRunNoFaceFallsBackToFullFrame(t *testing.T) {
	det := &fakeDetector{faces: nil} // detector runs, finds nothing

	var gotBatch [][]byte
	cls := classifier.NewMock()
	base := cls.ClassifyFunc
	cls.ClassifyFunc = func(ctx context.Context, req *classifier.BatchRequest) (*classifier.BatchResponse, error) {
		gotBatch = req.Images
		return base(ctx, req)
	}

	p := newTestPipeline(det, cls)
	res, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaImage,
		FramePaths: writeFrames(t, 1),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.FacesDetected != 0 {
		t.Errorf("FacesDetected = %d, want 0", res.FacesDetected)
	}
	if len(gotBatch) != 1 || string(gotBatch[0]) != "frame-0" {
		t.Errorf("expected the raw frame, got %q", gotBatch)
	}
	// Mock labels Real at 0.8: fake probability 0.2.
	if res.Report.RiskScore != 20.0 {
		t.Errorf("RiskScore = %v, want 20", res.Report.RiskScore)
	}
}

func TestRunDetectorUnavailable(t *testing.T) {
	// A stub-build manager yields no detector at all; every frame goes
	// through whole.
	p := New(detect.NewManager(detect.Config{ModelDir: t.TempDir(), Backend: "dnn"}, nil),
		classifier.NewMock(), Config{MaxFrames: 30, PaddingPercent: 30})

	res, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaVideo,
		FramePaths: writeFrames(t, 3),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.FacesDetected != 0 {
		t.Errorf("FacesDetected = %d, want 0", res.FacesDetected)
	}
	if res.FramesProcessed != 3 {
		t.Errorf("FramesProcessed = %d, want 3", res.FramesProcessed)
	}
}

func TestRunImageUsesFirstFrameOnly(t *testing.T) {
	det := &fakeDetector{}
	cls := classifier.NewMock()
	var batchSize int
	base := cls.ClassifyFunc
	cls.ClassifyFunc = func(ctx context.Context, req *classifier.BatchRequest) (*classifier.BatchResponse, error) {
		batchSize = len(req.Images)
		return base(ctx, req)
	}

	p := newTestPipeline(det, cls)
	if _, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaImage,
		FramePaths: writeFrames(t, 4),
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if batchSize != 1 {
		t.Errorf("IMAGE request classified %d frames, want 1", batchSize)
	}
}

func TestRunSamplesLongVideos(t *testing.T) {
	det := &fakeDetector{}
	cls := classifier.NewMock()
	var batchSize int
	base := cls.ClassifyFunc
	cls.ClassifyFunc = func(ctx context.Context, req *classifier.BatchRequest) (*classifier.BatchResponse, error) {
		batchSize = len(req.Images)
		return base(ctx, req)
	}

	p := newTestPipeline(det, cls)
	if _, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaVideo,
		FramePaths: writeFrames(t, 100),
	}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if batchSize != 30 {
		t.Errorf("classified %d frames, want 30 after sampling", batchSize)
	}
}

func TestRunValidation(t *testing.T) {
	p := newTestPipeline(&fakeDetector{}, classifier.NewMock())

	_, err := p.Run(context.Background(), &Request{Media: scoring.MediaVideo})
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("empty frames: got %v, want ErrNoFrames", err)
	}

	_, err = p.Run(context.Background(), &Request{
		Media: scoring.MediaAudio, FramePaths: []string{"a.wav"},
	})
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Errorf("audio: got %v, want ErrUnsupportedMedia", err)
	}

	_, err = p.Run(context.Background(), &Request{
		Media: "HOLOGRAM", FramePaths: []string{"a.jpg"},
	})
	if !errors.Is(err, ErrUnknownMedia) {
		t.Errorf("unknown: got %v, want ErrUnknownMedia", err)
	}
}

func TestRunClassifierErrorPropagates(t *testing.T) {
	cls := classifier.NewMock()
	cls.ClassifyFunc = func(ctx context.Context, req *classifier.BatchRequest) (*classifier.BatchResponse, error) {
		return nil, classifier.ErrUnavailable
	}

	p := newTestPipeline(&fakeDetector{}, cls)
	_, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaImage,
		FramePaths: writeFrames(t, 1),
	})

	if !classifier.Unavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestRunDetectFailureDegrades(t *testing.T) {
	// A frame the detector cannot decode still gets scored whole.
	p := newTestPipeline(&fakeDetector{fail: true}, classifier.NewMock())

	res, err := p.Run(context.Background(), &Request{
		Media:      scoring.MediaImage,
		FramePaths: writeFrames(t, 1),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.FacesDetected != 0 {
		t.Errorf("FacesDetected = %d, want 0", res.FacesDetected)
	}
}
