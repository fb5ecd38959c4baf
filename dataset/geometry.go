package dataset

import (
	"fmt"

	"github.com/lewtec/cocotool/internal/domain"
)

func divide(v, d float64) float64   { return v / d }
func multiply(v, d float64) float64 { return v * d }

// NormalizeGeometry returns a copy of ann with the bbox and keypoint
// coordinates expressed as fractions of the image size. Keypoint
// visibilities are left untouched.
func NormalizeGeometry(ann *domain.Annotation, width, height int) (*domain.Annotation, error) {
	return scaleGeometry(ann, width, height, divide)
}

// DenormalizeGeometry is the inverse of NormalizeGeometry: it returns a copy
// of ann with coordinates expressed in pixels.
func DenormalizeGeometry(ann *domain.Annotation, width, height int) (*domain.Annotation, error) {
	return scaleGeometry(ann, width, height, multiply)
}

// scaleGeometry applies op to every x with the width and every y with the height
func scaleGeometry(ann *domain.Annotation, width, height int, op func(v, d float64) float64) (*domain.Annotation, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidDimensions, width, height)
	}
	if len(ann.Keypoints)%3 != 0 {
		return nil, fmt.Errorf("%w: annotation %q has %d keypoint values", domain.ErrMalformedKeypoints, ann.ID, len(ann.Keypoints))
	}
	w, h := float64(width), float64(height)

	ret := ann.Clone()
	// bbox is [x, y, width, height]: even slots scale horizontally
	for i := range ret.BBox {
		if i%2 == 0 {
			ret.BBox[i] = op(ret.BBox[i], w)
		} else {
			ret.BBox[i] = op(ret.BBox[i], h)
		}
	}
	for i := 0; i+2 < len(ret.Keypoints); i += 3 {
		ret.Keypoints[i] = op(ret.Keypoints[i], w)
		ret.Keypoints[i+1] = op(ret.Keypoints[i+1], h)
	}
	return ret, nil
}
