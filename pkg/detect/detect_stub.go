//go:build !gocv

package detect

import (
	"fmt"

	"github.com/deepsift/deepsift/pkg/facecrop"
)

// Builds without the gocv tag have no OpenCV backends. The manager
// reports ErrUnavailable and the pipeline classifies full images.

func newDNN(modelDir string) (Detector, error) {
	return nil, fmt.Errorf("%w: built without gocv tag", ErrUnavailable)
}

func newHaar(modelDir string) (Detector, error) {
	return nil, fmt.Errorf("%w: built without gocv tag", ErrUnavailable)
}

// CropJPEG is unavailable without OpenCV. It is never reached in stub
// builds since no detector can select a face, but the symbol must exist.
func CropJPEG(encoded []byte, region facecrop.Box) ([]byte, error) {
	return nil, fmt.Errorf("%w: built without gocv tag", ErrUnavailable)
}
