package dataset

import (
	"context"
	"testing"

	"github.com/lewtec/cocotool/internal/domain"
	"github.com/lewtec/cocotool/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The same flows as the in-memory tests, against the SQLite store
func TestLoadExport_SQLite(t *testing.T) {
	ctx := context.Background()
	store := repository.SetupTestStore(t)

	first, err := Load(ctx, store, mustParse(t, personDataset), LoadOptions{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Annotations.Inserted)

	second, err := Load(ctx, store, mustParse(t, personDataset), LoadOptions{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{"1"}, second.Categories.SkippedDuplicateIDs)
	assert.Equal(t, []domain.ID{"7"}, second.Images.SkippedDuplicateIDs)
	assert.Equal(t, []domain.ID{"1"}, second.Annotations.SkippedDuplicateIDs)

	n, err := store.Annotations.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ds, err := Export(ctx, store, ExportOptions{Denormalize: true})
	require.NoError(t, err)
	require.Len(t, ds.Annotations, 1)
	assert.InDeltaSlice(t, []float64{10, 20, 30, 40}, ds.Annotations[0].BBox, 1e-9)
	assert.Empty(t, ds.Annotations[0].Key)
	assert.Equal(t, "http://x/a.jpg", ds.Images[0].URL)
}

func TestSaveAnnotations_SQLite(t *testing.T) {
	ctx := context.Background()
	store := repository.SetupTestStore(t)
	require.NoError(t, store.Annotations.Insert(ctx, &domain.Annotation{Key: "x1", ID: "x1", ImageID: "7", BBox: []float64{1, 1, 1, 1}}))

	edits := parseEdits(t, `[{"_id": "x1", "deleted": true}, {"category_id": 1, "bbox": [0, 0, 1, 1]}]`)
	result, err := SaveAnnotations(ctx, store.Annotations, "7", edits)
	require.NoError(t, err)
	require.Len(t, result.Created, 1)

	anns, err := store.Annotations.ListForImage(ctx, "7")
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, result.Created[0], anns[0].Key)
	assert.Equal(t, domain.ID(anns[0].Key), anns[0].ID)
}
