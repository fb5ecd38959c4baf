package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSection is returned when a dataset or task document lacks a required top-level key
	ErrMissingSection = errors.New("missing section")

	// ErrInvalidDimensions is returned when an image width or height is not positive
	ErrInvalidDimensions = errors.New("invalid image dimensions")

	// ErrMalformedKeypoints is returned when a keypoint sequence has the wrong length
	ErrMalformedKeypoints = errors.New("malformed keypoints")

	// ErrDuplicateKey is returned by repositories when a record with the same key already exists
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDanglingReference is matched by *DanglingReferenceError
	ErrDanglingReference = errors.New("dangling reference")

	// ErrNotFound is returned when a record that must exist does not
	ErrNotFound = errors.New("not found")

	// ErrOutOfScope is returned when an edit targets a record outside the image being edited
	ErrOutOfScope = errors.New("annotation out of scope")
)

// DanglingReferenceError reports an annotation pointing to an image the store does not know
type DanglingReferenceError struct {
	AnnotationID ID
	ImageID      ID
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: annotation %q references unknown image %q", e.AnnotationID, e.ImageID)
}

func (e *DanglingReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}
