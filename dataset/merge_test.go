package dataset

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/lewtec/cocotool/internal/domain"
	"github.com/lewtec/cocotool/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseEdits(t *testing.T, doc string) []*AnnotationEdit {
	t.Helper()
	var edits []*AnnotationEdit
	require.NoError(t, json.Unmarshal([]byte(doc), &edits))
	return edits
}

func seedAnnotations(t *testing.T, anns ...*domain.Annotation) *memstore.AnnotationRepository {
	t.Helper()
	repo := memstore.NewAnnotationRepository()
	for _, ann := range anns {
		require.NoError(t, repo.Insert(context.Background(), ann))
	}
	return repo
}

func TestSaveAnnotations(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and creates in one save", func(t *testing.T) {
		repo := seedAnnotations(t, &domain.Annotation{Key: "x1", ID: "x1", ImageID: "7", BBox: []float64{1, 1, 1, 1}})
		edits := parseEdits(t, `[{"_id": "x1", "deleted": true}, {"category_id": 1, "bbox": [0, 0, 1, 1]}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		require.Len(t, result.Created, 1)

		anns, err := repo.ListForImage(ctx, "7")
		require.NoError(t, err)
		require.Len(t, anns, 1)
		assert.NotEqual(t, "x1", anns[0].Key)
		assert.Equal(t, result.Created[0], anns[0].Key)
		assert.Equal(t, domain.ID(anns[0].Key), anns[0].ID)
		assert.Equal(t, domain.ID("1"), anns[0].CategoryID)
		assert.Equal(t, []float64{0, 0, 1, 1}, anns[0].BBox)
	})

	t.Run("replaces stored records whole", func(t *testing.T) {
		repo := seedAnnotations(t, &domain.Annotation{
			Key: "x1", ID: "1", ImageID: "7", CategoryID: "1",
			BBox: []float64{1, 1, 1, 1}, Keypoints: []float64{1, 1, 2},
		})
		edits := parseEdits(t, `[{"_id": "x1", "id": "1", "image_id": 7, "category_id": 2, "bbox": [2, 2, 2, 2]}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Replaced)

		got, err := repo.GetByKey(ctx, "x1")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("2"), got.CategoryID)
		assert.Equal(t, []float64{2, 2, 2, 2}, got.BBox)
		assert.Empty(t, got.Keypoints)
	})

	t.Run("ignores records created and deleted in the session", func(t *testing.T) {
		repo := seedAnnotations(t)
		edits := parseEdits(t, `[{"category_id": 1, "bbox": [0, 0, 1, 1], "deleted": true}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		assert.Empty(t, result.Created)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("keeps the id chosen by the client", func(t *testing.T) {
		repo := seedAnnotations(t)
		edits := parseEdits(t, `[{"id": "mine", "image_id": "7", "bbox": [0, 0, 1, 1]}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		got, err := repo.GetByKey(ctx, result.Created[0])
		require.NoError(t, err)
		assert.Equal(t, domain.ID("mine"), got.ID)
	})

	t.Run("rejects edits of other images before writing", func(t *testing.T) {
		repo := seedAnnotations(t,
			&domain.Annotation{Key: "x1", ID: "1", ImageID: "7"},
			&domain.Annotation{Key: "y1", ID: "2", ImageID: "8"},
		)
		edits := parseEdits(t, `[{"_id": "x1", "deleted": true}, {"_id": "y1", "deleted": true}]`)

		_, err := SaveAnnotations(ctx, repo, "7", edits)
		assert.ErrorIs(t, err, domain.ErrOutOfScope)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("ignores edits of a record deleted earlier in the save", func(t *testing.T) {
		repo := seedAnnotations(t,
			&domain.Annotation{Key: "x1", ID: "1", ImageID: "7"},
			&domain.Annotation{Key: "x2", ID: "2", ImageID: "7"},
		)
		edits := parseEdits(t, `[{"_id": "x1", "deleted": true}, {"_id": "x1", "id": "1", "image_id": 7, "bbox": [0, 0, 1, 1]}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)
		assert.Zero(t, result.Replaced)

		anns, err := repo.ListForImage(ctx, "7")
		require.NoError(t, err)
		require.Len(t, anns, 1)
		assert.Equal(t, "x2", anns[0].Key)
	})

	t.Run("rejects an id taken by another record before writing", func(t *testing.T) {
		repo := seedAnnotations(t,
			&domain.Annotation{Key: "x1", ID: "1", ImageID: "7", CategoryID: "1"},
			&domain.Annotation{Key: "x2", ID: "2", ImageID: "7", CategoryID: "1"},
		)
		edits := parseEdits(t, `[{"_id": "x2", "id": "2", "category_id": 5}, {"_id": "x1", "id": "2"}]`)

		_, err := SaveAnnotations(ctx, repo, "7", edits)
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)

		got, err := repo.GetByKey(ctx, "x2")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("1"), got.CategoryID)
	})

	t.Run("rejects an id held on another image", func(t *testing.T) {
		repo := seedAnnotations(t,
			&domain.Annotation{Key: "x1", ID: "1", ImageID: "7"},
			&domain.Annotation{Key: "y1", ID: "9", ImageID: "8"},
		)
		edits := parseEdits(t, `[{"_id": "x1", "deleted": true}, {"id": "9", "bbox": [0, 0, 1, 1]}]`)

		_, err := SaveAnnotations(ctx, repo, "7", edits)
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("reuses an id released earlier in the save", func(t *testing.T) {
		repo := seedAnnotations(t,
			&domain.Annotation{Key: "x1", ID: "1", ImageID: "7"},
			&domain.Annotation{Key: "x2", ID: "2", ImageID: "7"},
		)
		edits := parseEdits(t, `[{"_id": "x1", "id": "renamed"}, {"_id": "x2", "id": "1"}, {"id": "2", "bbox": [0, 0, 1, 1]}]`)

		result, err := SaveAnnotations(ctx, repo, "7", edits)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Replaced)
		require.Len(t, result.Created, 1)

		got, err := repo.GetByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "x2", got.Key)
	})

	t.Run("rejects new records for another image", func(t *testing.T) {
		repo := seedAnnotations(t)
		edits := parseEdits(t, `[{"image_id": "8", "bbox": [0, 0, 1, 1]}]`)

		_, err := SaveAnnotations(ctx, repo, "7", edits)
		assert.ErrorIs(t, err, domain.ErrOutOfScope)
	})
}

func TestImageOfEdits(t *testing.T) {
	id, err := ImageOfEdits(parseEdits(t, `[{"_id": "x1", "deleted": true}, {"image_id": 7}]`))
	require.NoError(t, err)
	assert.Equal(t, domain.ID("7"), id)

	_, err = ImageOfEdits(parseEdits(t, `[{"image_id": 7}, {"image_id": 8}]`))
	assert.ErrorIs(t, err, domain.ErrOutOfScope)

	_, err = ImageOfEdits(nil)
	assert.ErrorIs(t, err, domain.ErrOutOfScope)
}
