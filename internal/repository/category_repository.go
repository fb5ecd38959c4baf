package repository

import (
	"context"
	"database/sql"

	"github.com/lewtec/cocotool/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository on the category table
type CategoryRepository struct {
	table documentTable
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{table: documentTable{db: db, name: "category"}}
}

func (r *CategoryRepository) Insert(ctx context.Context, cat *domain.Category) error {
	return r.table.insert(ctx, cat.ID, cat)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Category, error) {
	var cat domain.Category
	found, err := r.table.get(ctx, id, &cat)
	if err != nil || !found {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return listDocuments[domain.Category](ctx, r.table.db, "SELECT doc FROM category ORDER BY rowid")
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	return r.table.count(ctx)
}

func (r *CategoryRepository) DeleteAll(ctx context.Context) error {
	return r.table.deleteAll(ctx)
}

// LicenseRepository implements domain.LicenseRepository on the license table
type LicenseRepository struct {
	table documentTable
}

// NewLicenseRepository creates a new LicenseRepository
func NewLicenseRepository(db *sql.DB) *LicenseRepository {
	return &LicenseRepository{table: documentTable{db: db, name: "license"}}
}

func (r *LicenseRepository) Insert(ctx context.Context, lic *domain.License) error {
	return r.table.insert(ctx, lic.ID, lic)
}

func (r *LicenseRepository) List(ctx context.Context) ([]*domain.License, error) {
	return listDocuments[domain.License](ctx, r.table.db, "SELECT doc FROM license ORDER BY rowid")
}

func (r *LicenseRepository) Count(ctx context.Context) (int64, error) {
	return r.table.count(ctx)
}

func (r *LicenseRepository) DeleteAll(ctx context.Context) error {
	return r.table.deleteAll(ctx)
}

var (
	_ domain.CategoryRepository = (*CategoryRepository)(nil)
	_ domain.LicenseRepository  = (*LicenseRepository)(nil)
)
