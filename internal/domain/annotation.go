package domain

import (
	"context"
	"encoding/json"
)

// Visibility flags stored in the third slot of every keypoint triple
const (
	VisibilityUnlabeled = 0
	VisibilityOccluded  = 1
	VisibilityVisible   = 2
)

// Annotation is a single object instance on an image.
//
// Key is the store primary key. ID is the dataset identifier, which for
// records created in the editor is the same value as Key.
type Annotation struct {
	Key          string          `json:"_id,omitempty"`
	ID           ID              `json:"id"`
	ImageID      ID              `json:"image_id"`
	CategoryID   ID              `json:"category_id"`
	Segmentation json.RawMessage `json:"segmentation,omitempty"`
	Area         float64         `json:"area"`
	BBox         []float64       `json:"bbox"`
	IsCrowd      int             `json:"iscrowd"`
	Keypoints    []float64       `json:"keypoints,omitempty"`
	NumKeypoints *int            `json:"num_keypoints,omitempty"`
}

// Clone returns a copy that shares no slices with the original
func (a *Annotation) Clone() *Annotation {
	ret := *a
	if a.BBox != nil {
		ret.BBox = append([]float64{}, a.BBox...)
	}
	if a.Keypoints != nil {
		ret.Keypoints = append([]float64{}, a.Keypoints...)
	}
	if a.Segmentation != nil {
		ret.Segmentation = append(json.RawMessage{}, a.Segmentation...)
	}
	if a.NumKeypoints != nil {
		n := *a.NumKeypoints
		ret.NumKeypoints = &n
	}
	return &ret
}

// AnnotationRepository defines the interface for annotation storage operations
type AnnotationRepository interface {
	// Insert stores a new annotation. Key must be set. Returns ErrDuplicateKey
	// if either Key or ID is taken.
	Insert(ctx context.Context, ann *Annotation) error

	// GetByKey retrieves an annotation by its store key, nil if it does not exist
	GetByKey(ctx context.Context, key string) (*Annotation, error)

	// GetByID retrieves an annotation by its dataset id, nil if it does not exist
	GetByID(ctx context.Context, id ID) (*Annotation, error)

	// ListForImage retrieves all annotations of an image
	ListForImage(ctx context.Context, imageID ID) ([]*Annotation, error)

	// List retrieves all annotations in insertion order
	List(ctx context.Context) ([]*Annotation, error)

	// Replace overwrites the annotation with the same Key. Returns ErrNotFound
	// if there is no such annotation.
	Replace(ctx context.Context, ann *Annotation) error

	// Delete removes an annotation by its store key
	Delete(ctx context.Context, key string) error

	// Count returns the total number of annotations
	Count(ctx context.Context) (int64, error)

	// DeleteAll drops every annotation
	DeleteAll(ctx context.Context) error
}
