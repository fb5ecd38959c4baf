package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/lewtec/cocotool/internal/domain"
)

func TestImageRepository_Insert(t *testing.T) {
	repo := NewImageRepository(SetupTestDB(t))
	ctx := context.Background()

	t.Run("inserts image successfully", func(t *testing.T) {
		err := repo.Insert(ctx, &domain.Image{ID: "7", Width: 100, Height: 200, FileName: "a.jpg"})
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}

		img, err := repo.GetByID(ctx, "7")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if img == nil {
			t.Fatal("Expected image, got nil")
		}
		if img.Width != 100 || img.Height != 200 {
			t.Errorf("dimensions = %dx%d, want 100x200", img.Width, img.Height)
		}
		if img.FileName != "a.jpg" {
			t.Errorf("FileName = %v, want a.jpg", img.FileName)
		}
	})

	t.Run("reports duplicate key", func(t *testing.T) {
		err := repo.Insert(ctx, &domain.Image{ID: "7", Width: 1, Height: 1})
		if !errors.Is(err, domain.ErrDuplicateKey) {
			t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
		}
	})
}

func TestImageRepository_GetByID(t *testing.T) {
	repo := NewImageRepository(SetupTestDB(t))
	ctx := context.Background()

	t.Run("returns nil for non-existent image", func(t *testing.T) {
		img, err := repo.GetByID(ctx, "missing")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if img != nil {
			t.Error("Expected nil for non-existent image")
		}
	})
}

func TestImageRepository_List(t *testing.T) {
	repo := NewImageRepository(SetupTestDB(t))
	ctx := context.Background()

	for _, id := range []domain.ID{"3", "1", "2"} {
		if err := repo.Insert(ctx, &domain.Image{ID: id, Width: 10, Height: 10}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	t.Run("keeps insertion order", func(t *testing.T) {
		images, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(images) != 3 {
			t.Fatalf("Got %d images, want 3", len(images))
		}
		for i, want := range []domain.ID{"3", "1", "2"} {
			if images[i].ID != want {
				t.Errorf("images[%d].ID = %v, want %v", i, images[i].ID, want)
			}
		}
	})

	t.Run("lists ids", func(t *testing.T) {
		ids, err := repo.ListIDs(ctx)
		if err != nil {
			t.Fatalf("ListIDs() error = %v", err)
		}
		if len(ids) != 3 || ids[0] != "3" {
			t.Errorf("ListIDs() = %v", ids)
		}
	})

	t.Run("counts and deletes", func(t *testing.T) {
		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 3 {
			t.Errorf("Count() = %d, want 3", count)
		}
		if err := repo.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}
		count, _ = repo.Count(ctx)
		if count != 0 {
			t.Errorf("Count() after DeleteAll = %d, want 0", count)
		}
	})
}

func TestCategoryRepository(t *testing.T) {
	db := SetupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	cat := &domain.Category{
		ID:             "1",
		Name:           "person",
		Supercategory:  "person",
		Keypoints:      []string{"nose", "neck"},
		KeypointsStyle: []string{"#e6194b", "#3cb44b"},
	}
	if err := repo.Insert(ctx, cat); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	t.Run("round trips keypoint styles", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "1")
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got == nil || len(got.KeypointsStyle) != 2 || got.KeypointsStyle[1] != "#3cb44b" {
			t.Errorf("GetByID() = %+v", got)
		}
	})

	t.Run("rejects duplicate id", func(t *testing.T) {
		err := repo.Insert(ctx, &domain.Category{ID: "1", Name: "other"})
		if !errors.Is(err, domain.ErrDuplicateKey) {
			t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
		}
	})

	t.Run("licenses live in their own table", func(t *testing.T) {
		licenses := NewLicenseRepository(db)
		if err := licenses.Insert(ctx, &domain.License{ID: "1", Name: "Proprietary"}); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		list, err := licenses.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 1 || list[0].Name != "Proprietary" {
			t.Errorf("List() = %+v", list)
		}
	})
}
