package domain

import (
	"context"
)

// Image is an image of the dataset. Annotations reference it by ID.
type Image struct {
	ID           ID     `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileName     string `json:"file_name"`
	License      ID     `json:"license"`
	RightsHolder string `json:"rights_holder"`
	URL          string `json:"url"`
	DateCaptured string `json:"date_captured"`

	// CocoURL is the legacy name of URL, only read from older datasets
	CocoURL string `json:"coco_url,omitempty"`
}

// ImageRepository defines the interface for image storage operations
type ImageRepository interface {
	// Insert stores a new image, returning ErrDuplicateKey if the ID is taken
	Insert(ctx context.Context, img *Image) error

	// GetByID retrieves an image by its ID, nil if it does not exist
	GetByID(ctx context.Context, id ID) (*Image, error)

	// List retrieves all images in insertion order
	List(ctx context.Context) ([]*Image, error)

	// ListIDs retrieves the IDs of all images in insertion order
	ListIDs(ctx context.Context) ([]ID, error)

	// Count returns the total number of images
	Count(ctx context.Context) (int64, error)

	// DeleteAll drops every image
	DeleteAll(ctx context.Context) error
}
