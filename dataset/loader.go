package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lewtec/cocotool/internal/domain"
)

// LoadOptions controls how a dataset is stored
type LoadOptions struct {
	// Normalize stores geometry as fractions of the image size
	Normalize bool
}

// BatchResult reports the outcome of inserting one collection
type BatchResult struct {
	Collection          string
	Inserted            int
	SkippedDuplicateIDs []domain.ID
}

// Skipped returns the number of records skipped as duplicates
func (b BatchResult) Skipped() int {
	return len(b.SkippedDuplicateIDs)
}

func (b BatchResult) String() string {
	return fmt.Sprintf("%s: %d inserted, %d duplicates skipped", b.Collection, b.Inserted, b.Skipped())
}

// LoadReport holds the batch results of a dataset load
type LoadReport struct {
	Categories  BatchResult
	Images      BatchResult
	Annotations BatchResult
	Licenses    BatchResult
}

// Batches returns the results in load order
func (r *LoadReport) Batches() []BatchResult {
	return []BatchResult{r.Categories, r.Images, r.Annotations, r.Licenses}
}

// insertBatch inserts every item, counting duplicate keys and aborting on any other error
func insertBatch[T any](ctx context.Context, collection string, items []T, idOf func(T) domain.ID, insert func(context.Context, T) error) (BatchResult, error) {
	result := BatchResult{Collection: collection}
	log.Printf("dataset: inserting %d %s", len(items), collection)
	for _, item := range items {
		err := insert(ctx, item)
		switch {
		case err == nil:
			result.Inserted++
		case errors.Is(err, domain.ErrDuplicateKey):
			result.SkippedDuplicateIDs = append(result.SkippedDuplicateIDs, idOf(item))
		default:
			return result, fmt.Errorf("while inserting %s %q: %w", collection, idOf(item), err)
		}
	}
	if result.Skipped() > 0 {
		log.Printf("dataset: %s", result)
	}
	return result, nil
}

// Load inserts categories, images, annotations and licenses, in that order.
// Records whose id is already stored are skipped and reported, so loading
// the same document again is harmless. Any other failure aborts the load
// and leaves what was already inserted in place. The caller's dataset is
// not modified.
func Load(ctx context.Context, store *domain.Store, ds *domain.Dataset, opts LoadOptions) (*LoadReport, error) {
	log.Printf("dataset: loading dataset")
	ds = copyDataset(ds)
	NormalizeDataset(ds)
	report := &LoadReport{}
	var err error

	report.Categories, err = insertBatch(ctx, "categories", ds.Categories,
		func(c *domain.Category) domain.ID { return c.ID }, store.Categories.Insert)
	if err != nil {
		return report, err
	}

	report.Images, err = insertBatch(ctx, "images", ds.Images,
		func(i *domain.Image) domain.ID { return i.ID }, store.Images.Insert)
	if err != nil {
		return report, err
	}

	// every annotation is prepared before the first one is written, so a
	// dangling reference leaves the annotation collection untouched
	annotations, err := prepareAnnotations(ctx, store.Images, ds.Annotations, opts)
	if err != nil {
		return report, err
	}
	report.Annotations, err = insertBatch(ctx, "annotations", annotations,
		func(a *domain.Annotation) domain.ID { return a.ID }, store.Annotations.Insert)
	if err != nil {
		return report, err
	}

	report.Licenses, err = insertBatch(ctx, "licenses", ds.Licenses,
		func(l *domain.License) domain.ID { return l.ID }, store.Licenses.Insert)
	if err != nil {
		return report, err
	}

	for _, batch := range report.Batches() {
		log.Printf("dataset: %s", batch)
	}
	return report, nil
}

// copyDataset copies every record one level deep, enough for normalization
// which only assigns fields
func copyDataset(ds *domain.Dataset) *domain.Dataset {
	return &domain.Dataset{
		Categories:  copyRecords(ds.Categories),
		Images:      copyRecords(ds.Images),
		Annotations: copyRecords(ds.Annotations),
		Licenses:    copyRecords(ds.Licenses),
	}
}

func copyRecords[T any](items []*T) []*T {
	if items == nil {
		return nil
	}
	result := make([]*T, len(items))
	for i, item := range items {
		if item != nil {
			cp := *item
			result[i] = &cp
		}
	}
	return result
}

// prepareAnnotations copies the annotations, minting store keys and
// rescaling geometry when asked to
func prepareAnnotations(ctx context.Context, images domain.ImageRepository, annotations []*domain.Annotation, opts LoadOptions) ([]*domain.Annotation, error) {
	sizes := newImageSizes(images)
	result := make([]*domain.Annotation, 0, len(annotations))
	for _, ann := range annotations {
		prepared := ann.Clone()
		if opts.Normalize {
			img, err := sizes.lookup(ctx, ann)
			if err != nil {
				return nil, err
			}
			prepared, err = NormalizeGeometry(ann, img.Width, img.Height)
			if err != nil {
				return nil, fmt.Errorf("while normalizing annotation %q: %w", ann.ID, err)
			}
		}
		if prepared.Key == "" {
			prepared.Key = uuid.NewString()
		}
		if prepared.ID == "" {
			prepared.ID = domain.ID(prepared.Key)
		}
		result = append(result, prepared)
	}
	return result, nil
}

// imageSizes memoizes image lookups by id
type imageSizes struct {
	images domain.ImageRepository
	known  map[domain.ID]*domain.Image
}

func newImageSizes(images domain.ImageRepository) *imageSizes {
	return &imageSizes{images: images, known: map[domain.ID]*domain.Image{}}
}

// preload seeds the cache, used when the images are already in hand
func (s *imageSizes) preload(images []*domain.Image) {
	for _, img := range images {
		s.known[img.ID] = img
	}
}

func (s *imageSizes) lookup(ctx context.Context, ann *domain.Annotation) (*domain.Image, error) {
	if img, ok := s.known[ann.ImageID]; ok {
		return img, nil
	}
	var img *domain.Image
	if s.images != nil {
		var err error
		img, err = s.images.GetByID(ctx, ann.ImageID)
		if err != nil {
			return nil, fmt.Errorf("while looking up image %q: %w", ann.ImageID, err)
		}
	}
	if img == nil {
		return nil, &domain.DanglingReferenceError{AnnotationID: ann.ID, ImageID: ann.ImageID}
	}
	s.known[img.ID] = img
	return img, nil
}

// Drop removes every category, image, annotation and license
func Drop(ctx context.Context, store *domain.Store) error {
	log.Printf("dataset: dropping dataset collections")
	if err := store.Categories.DeleteAll(ctx); err != nil {
		return fmt.Errorf("while dropping categories: %w", err)
	}
	if err := store.Images.DeleteAll(ctx); err != nil {
		return fmt.Errorf("while dropping images: %w", err)
	}
	if err := store.Annotations.DeleteAll(ctx); err != nil {
		return fmt.Errorf("while dropping annotations: %w", err)
	}
	if err := store.Licenses.DeleteAll(ctx); err != nil {
		return fmt.Errorf("while dropping licenses: %w", err)
	}
	return nil
}
