//go:build gocv

package detect

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/deepsift/deepsift/pkg/facecrop"
)

// DNN input geometry and mean subtraction values for the SSD ResNet-10
// face detector.
const (
	dnnInputSide = 300
	dnnMeanB     = 104.0
	dnnMeanG     = 177.0
	dnnMeanR     = 123.0
)

// dnnDetector runs the OpenCV DNN face detector. It trades some false
// positives for recall (threshold 0.3): the classifier requires face
// crops, so a missed face hurts more than a loose one.
type dnnDetector struct {
	net gocv.Net
	mu  sync.Mutex // OpenCV nets are not re-entrant
}

func newDNN(modelDir string) (Detector, error) {
	configPath, modelPath, err := ensureDNNModels(modelDir)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNetFromCaffe(configPath, modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("detect: failed to load DNN model from %s", modelDir)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &dnnDetector{net: net}, nil
}

// Detect finds faces in the encoded image.
func (d *dnnDetector) Detect(encoded []byte) (Result, error) {
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

	imgW := img.Cols()
	imgH := img.Rows()

	blob := gocv.BlobFromImage(img, 1.0,
		image.Pt(dnnInputSide, dnnInputSide),
		gocv.NewScalar(dnnMeanB, dnnMeanG, dnnMeanR, 0),
		false, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	prob := d.net.Forward("")
	defer prob.Close()

	// Output blob is 1x1xNx7: [batch, class, confidence, x1, y1, x2, y2]
	// with coordinates normalized to 0-1.
	detections := gocv.GetBlobChannel(prob, 0, 0)
	defer detections.Close()

	var faces []facecrop.Detection
	for r := 0; r < detections.Rows(); r++ {
		confidence := float64(detections.GetFloatAt(r, 2))
		if confidence <= 0 {
			continue
		}

		x1 := int(float64(detections.GetFloatAt(r, 3)) * float64(imgW))
		y1 := int(float64(detections.GetFloatAt(r, 4)) * float64(imgH))
		x2 := int(float64(detections.GetFloatAt(r, 5)) * float64(imgW))
		y2 := int(float64(detections.GetFloatAt(r, 6)) * float64(imgH))

		faces = append(faces, facecrop.Detection{
			Box:        facecrop.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1},
			Confidence: confidence,
		})
	}

	return Result{Width: imgW, Height: imgH, Faces: faces}, nil
}

// Threshold returns the selector threshold tuned for this backend.
func (d *dnnDetector) Threshold() float64 {
	return facecrop.DNNConfidenceThreshold
}

// Name identifies the backend.
func (d *dnnDetector) Name() string {
	return "dnn-ssd-resnet10"
}

// Close releases the network.
func (d *dnnDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
