package domain

import "context"

// Category is an object class. Keypoint categories carry the ordered names of
// their keypoints and one display colour per keypoint.
type Category struct {
	ID             ID       `json:"id"`
	Name           string   `json:"name"`
	Supercategory  string   `json:"supercategory"`
	Keypoints      []string `json:"keypoints,omitempty"`
	KeypointsStyle []string `json:"keypoints_style,omitempty"`
	Skeleton       [][2]int `json:"skeleton,omitempty"`
}

// CategoryRepository defines the interface for category storage operations
type CategoryRepository interface {
	Insert(ctx context.Context, cat *Category) error
	GetByID(ctx context.Context, id ID) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}

// License describes the terms an image is distributed under
type License struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// LicenseRepository defines the interface for license storage operations
type LicenseRepository interface {
	Insert(ctx context.Context, lic *License) error
	List(ctx context.Context) ([]*License, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) error
}
