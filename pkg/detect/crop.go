//go:build gocv

package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/deepsift/deepsift/pkg/facecrop"
)

// cropQuality keeps enough detail for the classifier without inflating
// the batch payload.
const cropQuality = 90

// CropJPEG extracts region from the encoded image and re-encodes it as
// JPEG. The region is expected to already satisfy the facecrop bounds
// invariant; it is intersected with the image once more as a guard
// against callers passing a region computed for different dimensions.
func CropJPEG(encoded []byte, region facecrop.Box) ([]byte, error) {
	img, err := gocv.IMDecode(encoded, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, ErrBadImage
	}

	clamped := region.Clamp(img.Cols(), img.Rows())
	if clamped.Empty() {
		return nil, fmt.Errorf("detect: crop region %+v outside %dx%d image",
			region, img.Cols(), img.Rows())
	}

	rect := image.Rect(clamped.X, clamped.Y, clamped.X+clamped.W, clamped.Y+clamped.H)
	crop := img.Region(rect)
	defer crop.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, crop,
		[]int{gocv.IMWriteJpegQuality, cropQuality})
	if err != nil {
		return nil, fmt.Errorf("detect: encode crop: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}
