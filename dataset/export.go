package dataset

import (
	"context"
	"fmt"
	"log"

	"github.com/lewtec/cocotool/internal/domain"
)

// ExportOptions controls how a dataset is read back
type ExportOptions struct {
	// Denormalize converts stored fractions back to pixel coordinates
	Denormalize bool
}

// Export reads every collection back into a dataset document. Store keys
// are not part of the exchange format and are left out.
func Export(ctx context.Context, store *domain.Store, opts ExportOptions) (*domain.Dataset, error) {
	log.Printf("dataset: exporting dataset")

	categories, err := store.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing categories: %w", err)
	}
	log.Printf("dataset: found %d categories", len(categories))

	images, err := store.Images.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing images: %w", err)
	}
	log.Printf("dataset: found %d images", len(images))

	annotations, err := store.Annotations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing annotations: %w", err)
	}
	log.Printf("dataset: found %d annotations", len(annotations))

	licenses, err := store.Licenses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing licenses: %w", err)
	}
	log.Printf("dataset: found %d licenses", len(licenses))

	sizes := newImageSizes(nil)
	sizes.preload(images)
	for i, ann := range annotations {
		ann.Key = ""
		if !opts.Denormalize {
			continue
		}
		img, err := sizes.lookup(ctx, ann)
		if err != nil {
			return nil, err
		}
		annotations[i], err = DenormalizeGeometry(ann, img.Width, img.Height)
		if err != nil {
			return nil, fmt.Errorf("while denormalizing annotation %q: %w", ann.ID, err)
		}
	}

	return &domain.Dataset{
		Categories:  categories,
		Images:      images,
		Annotations: annotations,
		Licenses:    licenses,
	}, nil
}
