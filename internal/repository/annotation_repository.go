package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lewtec/cocotool/internal/domain"
)

// AnnotationRepository implements domain.AnnotationRepository.
// The key, id and image_id columns mirror the document so they can be indexed.
type AnnotationRepository struct {
	db *sql.DB
}

// NewAnnotationRepository creates a new AnnotationRepository
func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Insert stores a new annotation
func (r *AnnotationRepository) Insert(ctx context.Context, ann *domain.Annotation) error {
	if ann.Key == "" {
		return fmt.Errorf("annotation %q has no key", ann.ID)
	}
	data, err := json.Marshal(ann)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO annotation (key, id, image_id, doc) VALUES (?, ?, ?, ?)",
		ann.Key, string(ann.ID), string(ann.ImageID), string(data))
	return translateError(err)
}

// GetByKey retrieves an annotation by its store key
func (r *AnnotationRepository) GetByKey(ctx context.Context, key string) (*domain.Annotation, error) {
	anns, err := listDocuments[domain.Annotation](ctx, r.db, "SELECT doc FROM annotation WHERE key = ?", key)
	if err != nil {
		return nil, err
	}
	if len(anns) == 0 {
		return nil, nil
	}
	return anns[0], nil
}

// GetByID retrieves an annotation by its dataset id
func (r *AnnotationRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Annotation, error) {
	anns, err := listDocuments[domain.Annotation](ctx, r.db, "SELECT doc FROM annotation WHERE id = ?", string(id))
	if err != nil {
		return nil, err
	}
	if len(anns) == 0 {
		return nil, nil
	}
	return anns[0], nil
}

// ListForImage retrieves all annotations of an image
func (r *AnnotationRepository) ListForImage(ctx context.Context, imageID domain.ID) ([]*domain.Annotation, error) {
	return listDocuments[domain.Annotation](ctx, r.db, "SELECT doc FROM annotation WHERE image_id = ? ORDER BY rowid", string(imageID))
}

// List retrieves all annotations
func (r *AnnotationRepository) List(ctx context.Context) ([]*domain.Annotation, error) {
	return listDocuments[domain.Annotation](ctx, r.db, "SELECT doc FROM annotation ORDER BY rowid")
}

// Replace overwrites the whole annotation stored under ann.Key
func (r *AnnotationRepository) Replace(ctx context.Context, ann *domain.Annotation) error {
	data, err := json.Marshal(ann)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx,
		"UPDATE annotation SET id = ?, image_id = ?, doc = ? WHERE key = ?",
		string(ann.ID), string(ann.ImageID), string(data), ann.Key)
	if err != nil {
		return translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("annotation %q: %w", ann.Key, domain.ErrNotFound)
	}
	return nil
}

// Delete removes an annotation by its store key
func (r *AnnotationRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM annotation WHERE key = ?", key)
	return err
}

// Count returns the total number of annotations
func (r *AnnotationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM annotation").Scan(&n)
	return n, err
}

// DeleteAll removes every annotation
func (r *AnnotationRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM annotation")
	return err
}

// Verify that AnnotationRepository implements domain.AnnotationRepository
var _ domain.AnnotationRepository = (*AnnotationRepository)(nil)
