//go:build gocv

package detect

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/deepsift/deepsift/pkg/facecrop"
)

// haarDetector is the classical cascade fallback for hosts where the DNN
// model cannot be fetched. Lower recall, no confidence output: every hit
// is reported at confidence 1.0 and filtered by the 0.5 threshold.
type haarDetector struct {
	cascade gocv.CascadeClassifier
	mu      sync.Mutex
}

func newHaar(modelDir string) (Detector, error) {
	path, err := ensureHaarModel(modelDir)
	if err != nil {
		return nil, err
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(path) {
		cascade.Close()
		return nil, fmt.Errorf("detect: failed to load Haar cascade from %s", path)
	}

	return &haarDetector{cascade: cascade}, nil
}

// Detect finds faces in the encoded image.
func (d *haarDetector) Detect(encoded []byte) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(encoded, gocv.IMReadColor)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	defer img.Close()

	if img.Empty() {
		return Result{}, ErrBadImage
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	rects := d.cascade.DetectMultiScaleWithParams(gray,
		1.1, 5, 0, image.Pt(30, 30), image.Pt(0, 0))

	faces := make([]facecrop.Detection, 0, len(rects))
	for _, r := range rects {
		faces = append(faces, facecrop.Detection{
			Box:        facecrop.Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()},
			Confidence: 1.0,
		})
	}

	return Result{Width: img.Cols(), Height: img.Rows(), Faces: faces}, nil
}

// Threshold returns the selector threshold tuned for this backend.
func (d *haarDetector) Threshold() float64 {
	return facecrop.HaarConfidenceThreshold
}

// Name identifies the backend.
func (d *haarDetector) Name() string {
	return "haar-cascade"
}

// Close releases the cascade.
func (d *haarDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cascade.Close()
}
