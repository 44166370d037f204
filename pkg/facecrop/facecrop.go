// Package facecrop computes face crop regions for classifier input.
//
// The deepfake classifier is trained on cropped faces, so the crop math
// here directly determines scoring quality: the selected detector box is
// expanded to a padded square and slid back inside the image bounds
// rather than shrunk, keeping the aspect ratio the model expects.
package facecrop

import "math"

// Box is an integer pixel rectangle inside an image.
type Box struct {
	X, Y, W, H int
}

// Area returns the box area in pixels.
func (b Box) Area() int {
	return b.W * b.H
}

// Empty reports whether the box has no extent.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Clamp intersects the box with the image rectangle [0,imgW)x[0,imgH).
// The result may be empty when the box lies fully outside the image.
func (b Box) Clamp(imgW, imgH int) Box {
	x1 := max(0, b.X)
	y1 := max(0, b.Y)
	x2 := min(imgW, b.X+b.W)
	y2 := min(imgH, b.Y+b.H)
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Detection is one candidate face returned by a detector backend.
type Detection struct {
	Box        Box
	Confidence float64 // 0-1
}

// Default confidence thresholds per detector backend. The DNN detector
// runs at high recall with a low threshold; the Haar cascade produces no
// usable score below 0.5.
const (
	DNNConfidenceThreshold  = 0.3
	HaarConfidenceThreshold = 0.5
)

// DefaultPaddingPercent is the crop padding around the detected face.
// A looser crop works better for FaceForensics-style classifiers.
const DefaultPaddingPercent = 30.0

// SelectLargest picks the largest valid face above the confidence
// threshold. Boxes are clamped to the image before the area comparison;
// detections that become degenerate after clamping are dropped. Ties go
// to the earlier detection. The returned detection carries the clamped
// box, so downstream crop math always works in image coordinates.
//
// A nil return is the documented "no face" outcome, not an error: the
// caller is expected to fall back to the full image and count the event.
func SelectLargest(dets []Detection, threshold float64, imgW, imgH int) *Detection {
	var best *Detection
	bestArea := 0

	for i := range dets {
		if dets[i].Confidence <= threshold {
			continue
		}
		clamped := dets[i].Box.Clamp(imgW, imgH)
		if clamped.Empty() {
			continue
		}
		if area := clamped.Area(); area > bestArea {
			bestArea = area
			best = &Detection{Box: clamped, Confidence: dets[i].Confidence}
		}
	}

	return best
}

// Square expands box into a padded square crop region guaranteed to lie
// inside an imgW x imgH image.
//
// The square is centered on the box center with side
// floor(max(w,h) * (1+padding/100)). When the square clips an image edge
// the window is shifted back toward the interior to preserve the full
// side length instead of shrinking it. A final re-clamp pass guarantees
// the in-bounds invariant even when the image is smaller than the square
// on an axis; in that degenerate case the crop spans the full extent of
// that axis.
//
// Square is not idempotent: re-running it on its own output compounds
// the padding. Callers apply it once per detector box.
func Square(imgW, imgH int, box Box, paddingPercent float64) Box {
	centerX := float64(box.X) + float64(box.W)/2
	centerY := float64(box.Y) + float64(box.H)/2
	maxDim := max(box.W, box.H)

	size := int(math.Floor(float64(maxDim) * (1 + paddingPercent/100)))
	half := size / 2

	x1 := max(0, int(centerX)-half)
	y1 := max(0, int(centerY)-half)
	x2 := min(imgW, int(centerX)+half)
	y2 := min(imgH, int(centerY)+half)

	// Slide the window back into the image when an edge clipped it.
	if x2-x1 < size {
		if x1 == 0 {
			x2 = min(imgW, size)
		} else if x2 == imgW {
			x1 = max(0, imgW-size)
		}
	}
	if y2-y1 < size {
		if y1 == 0 {
			y2 = min(imgH, size)
		} else if y2 == imgH {
			y1 = max(0, imgH-size)
		}
	}

	// Final pass: re-derive both edges so the result is square and
	// in-bounds regardless of how the shifts above interacted.
	x2 = min(imgW, x1+size)
	y2 = min(imgH, y1+size)
	x1 = max(0, x2-size)
	y1 = max(0, y2-size)

	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}
