package repository

import (
	"context"
	"database/sql"

	"github.com/lewtec/cocotool/internal/domain"
)

// ImageRepository implements domain.ImageRepository on the image table
type ImageRepository struct {
	table documentTable
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{table: documentTable{db: db, name: "image"}}
}

// Insert stores a new image
func (r *ImageRepository) Insert(ctx context.Context, img *domain.Image) error {
	return r.table.insert(ctx, img.ID, img)
}

// GetByID retrieves an image by its ID
func (r *ImageRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Image, error) {
	var img domain.Image
	found, err := r.table.get(ctx, id, &img)
	if err != nil || !found {
		return nil, err
	}
	return &img, nil
}

// List retrieves all images
func (r *ImageRepository) List(ctx context.Context) ([]*domain.Image, error) {
	return listDocuments[domain.Image](ctx, r.table.db, "SELECT doc FROM image ORDER BY rowid")
}

// ListIDs retrieves the IDs of all images
func (r *ImageRepository) ListIDs(ctx context.Context) ([]domain.ID, error) {
	return r.table.ids(ctx)
}

// Count returns the total number of images
func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	return r.table.count(ctx)
}

// DeleteAll removes every image
func (r *ImageRepository) DeleteAll(ctx context.Context) error {
	return r.table.deleteAll(ctx)
}

// Verify that ImageRepository implements domain.ImageRepository
var _ domain.ImageRepository = (*ImageRepository)(nil)
