package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/lewtec/cocotool/internal/domain"
)

func TestAnnotationRepository(t *testing.T) {
	repo := NewAnnotationRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, &domain.Annotation{Key: "k1", ID: "1", ImageID: "7", BBox: []float64{1, 2, 3, 4}}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	t.Run("stored documents are not aliased", func(t *testing.T) {
		got, _ := repo.GetByKey(ctx, "k1")
		got.BBox[0] = 99
		again, _ := repo.GetByKey(ctx, "k1")
		if again.BBox[0] != 1 {
			t.Errorf("stored bbox was mutated through a returned copy")
		}
	})

	t.Run("rejects duplicate dataset id", func(t *testing.T) {
		err := repo.Insert(ctx, &domain.Annotation{Key: "k2", ID: "1", ImageID: "7"})
		if !errors.Is(err, domain.ErrDuplicateKey) {
			t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
		}
	})

	t.Run("replace moves the dataset id", func(t *testing.T) {
		if err := repo.Replace(ctx, &domain.Annotation{Key: "k1", ID: "renamed", ImageID: "7"}); err != nil {
			t.Fatalf("Replace() error = %v", err)
		}
		if err := repo.Insert(ctx, &domain.Annotation{Key: "k3", ID: "1", ImageID: "7"}); err != nil {
			t.Errorf("old id should be free after replace, got %v", err)
		}
		if got, _ := repo.GetByID(ctx, "renamed"); got == nil || got.Key != "k1" {
			t.Errorf("GetByID(renamed) = %+v, want key k1", got)
		}
	})

	t.Run("replace of unknown key", func(t *testing.T) {
		err := repo.Replace(ctx, &domain.Annotation{Key: "nope", ID: "nope"})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Replace() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete frees the id", func(t *testing.T) {
		if err := repo.Delete(ctx, "k3"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		anns, _ := repo.ListForImage(ctx, "7")
		if len(anns) != 1 || anns[0].Key != "k1" {
			t.Errorf("ListForImage() = %v", anns)
		}
	})
}

func TestStoreCollections(t *testing.T) {
	store := New()
	ctx := context.Background()

	store.Images.Insert(ctx, &domain.Image{ID: "b"})
	store.Images.Insert(ctx, &domain.Image{ID: "a"})
	if err := store.Images.Insert(ctx, &domain.Image{ID: "a"}); !errors.Is(err, domain.ErrDuplicateKey) {
		t.Errorf("Insert() error = %v, want ErrDuplicateKey", err)
	}

	ids, _ := store.Images.ListIDs(ctx)
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "a" {
		t.Errorf("ListIDs() = %v, want [b a]", ids)
	}

	store.Images.DeleteAll(ctx)
	if n, _ := store.Images.Count(ctx); n != 0 {
		t.Errorf("Count() = %d after DeleteAll", n)
	}
}
