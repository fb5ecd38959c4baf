package dataset

import (
	"fmt"
	"math"

	"github.com/lewtec/cocotool/internal/domain"
)

const (
	// Body25Keypoints is the number of points in an OpenPose BODY_25 detection
	Body25Keypoints = 25
	// COCO18Keypoints is the number of points in the COCO-18 skeleton
	COCO18Keypoints = 18

	// margins around the labeled keypoints, shoulders and eyes do not reach the
	// edge of the body or the top of the head
	bboxMarginX   = 100
	bboxMarginTop = 200
)

// body25ToCOCO18 lists, for every COCO-18 point, the BODY_25 point it comes
// from. MidHip (8) and the feet/background points (19-24) have no counterpart.
var body25ToCOCO18 = [COCO18Keypoints]int{0, 1, 2, 3, 4, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}

// COCO18Names are the keypoint names of the COCO-18 skeleton in order
var COCO18Names = []string{
	"nose",
	"neck",
	"right_shoulder",
	"right_elbow",
	"right_wrist",
	"left_shoulder",
	"left_elbow",
	"left_wrist",
	"right_hip",
	"right_knee",
	"right_ankle",
	"left_hip",
	"left_knee",
	"left_ankle",
	"right_eye",
	"left_eye",
	"right_ear",
	"left_ear",
}

// COCO18Skeleton are the limbs of the COCO-18 skeleton as keypoint index pairs
var COCO18Skeleton = [][2]int{
	{0, 14}, {14, 16}, {0, 15}, {15, 17},
	{0, 1}, {1, 2}, {2, 3}, {3, 4},
	{1, 5}, {5, 6}, {6, 7},
	{1, 8}, {8, 9}, {9, 10},
	{1, 11}, {11, 12}, {12, 13},
}

// RemapPose converts a flat BODY_25 (x, y, confidence) sequence into the
// COCO-18 point order.
func RemapPose(keypoints []float64) ([]float64, error) {
	if len(keypoints) != Body25Keypoints*3 {
		return nil, fmt.Errorf("%w: expected %d values, got %d", domain.ErrMalformedKeypoints, Body25Keypoints*3, len(keypoints))
	}
	ret := make([]float64, 0, COCO18Keypoints*3)
	for _, src := range body25ToCOCO18 {
		ret = append(ret, keypoints[src*3:src*3+3]...)
	}
	return ret, nil
}

// VisibilityFromConfidence returns a copy of keypoints where every
// confidence is replaced by a visibility flag: visible when positive,
// unlabeled otherwise.
func VisibilityFromConfidence(keypoints []float64) ([]float64, error) {
	if len(keypoints)%3 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a whole number of points", domain.ErrMalformedKeypoints, len(keypoints))
	}
	ret := append([]float64{}, keypoints...)
	for i := 2; i < len(ret); i += 3 {
		if ret[i] > 0 {
			ret[i] = domain.VisibilityVisible
		} else {
			ret[i] = domain.VisibilityUnlabeled
		}
	}
	return ret, nil
}

// BoundingBox computes [x, y, w, h] around the labeled keypoints, widened by
// fixed margins and clamped to the image. It returns an empty box when no
// point is labeled.
func BoundingBox(keypoints []float64, maxWidth, maxHeight float64) []float64 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	labeled := 0
	for i := 0; i+2 < len(keypoints); i += 3 {
		if keypoints[i+2] == domain.VisibilityUnlabeled {
			continue
		}
		labeled++
		minX = math.Min(minX, keypoints[i])
		maxX = math.Max(maxX, keypoints[i])
		minY = math.Min(minY, keypoints[i+1])
		maxY = math.Max(maxY, keypoints[i+1])
	}
	if labeled == 0 {
		return []float64{}
	}

	left := math.Max(minX-bboxMarginX, 0)
	top := math.Max(minY-bboxMarginTop, 0)
	right := math.Min(maxX+bboxMarginX, maxWidth)
	bottom := math.Min(maxY, maxHeight)
	return []float64{left, top, math.Max(right-left, 0), math.Max(bottom-top, 0)}
}
