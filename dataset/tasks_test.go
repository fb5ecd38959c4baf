package dataset

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/lewtec/cocotool/internal/domain"
	"github.com/lewtec/cocotool/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskData(t *testing.T) {
	_, err := ParseTaskData([]byte(`{"instructions": []}`))
	assert.ErrorIs(t, err, domain.ErrMissingSection)

	td, err := ParseTaskData([]byte(`{"tasks": [{"id": "t1", "image_ids": [1, 2], "instructions_id": "i1", "category_id": 1}, null]}`))
	require.NoError(t, err)
	require.Len(t, td.Tasks, 1)
	assert.Equal(t, domain.IDs("1", "2"), td.Tasks[0].ImageIDs)
	assert.Equal(t, []domain.ID{"t1"}, td.TaskIDs())
}

func TestLoadTasks(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewTaskRepository()
	td := &TaskData{
		Tasks: []*domain.BBoxTask{
			{ID: "t1", ImageIDs: domain.IDs("1"), InstructionsID: "i1"},
			{ID: "t1", ImageIDs: domain.IDs("2"), InstructionsID: "i1"},
		},
		Instructions: []*domain.TaskInstructions{{ID: "i1", Title: "Boxes"}},
	}

	report, err := LoadTasks(ctx, repo, td)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Instructions.Inserted)
	assert.Equal(t, 1, report.Tasks.Inserted)
	assert.Equal(t, []domain.ID{"t1"}, report.Tasks.SkippedDuplicateIDs)

	task, err := repo.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.IDs("1"), task.ImageIDs)
}

func TestCreateTasksForAllImages(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	for i := 1; i <= 45; i++ {
		require.NoError(t, store.Images.Insert(ctx, &domain.Image{ID: domain.ID(fmt.Sprint(i)), Width: 10, Height: 10}))
	}

	tasks, err := CreateTasksForAllImages(ctx, store, "1", "i1", 0, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Len(t, tasks[0].ImageIDs, DefaultImagesPerTask)
	assert.Len(t, tasks[2].ImageIDs, 5)

	seen := map[domain.ID]bool{}
	for _, task := range tasks {
		assert.Equal(t, domain.ID("1"), task.CategoryID)
		assert.Equal(t, domain.ID("i1"), task.InstructionsID)
		for _, id := range task.ImageIDs {
			assert.False(t, seen[id], "image %s assigned twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 45)

	stored, err := store.Tasks.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestTaskResults(t *testing.T) {
	ctx := context.Background()
	repo := memstore.NewTaskRepository()
	require.NoError(t, repo.InsertTask(ctx, &domain.BBoxTask{ID: "t1", ImageIDs: domain.IDs("7")}))
	require.NoError(t, repo.InsertTask(ctx, &domain.BBoxTask{ID: "t2", ImageIDs: domain.IDs("8")}))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	res := &domain.TaskResult{
		TaskID: "t1",
		Time:   12.5,
		Results: []*domain.ImageResult{
			{
				Image:       &domain.Image{ID: "7", Width: 100, Height: 200},
				Annotations: []*domain.Annotation{{ID: "a", ImageID: "7", BBox: []float64{0.1, 0.1, 0.3, 0.2}}},
			},
			nil,
		},
	}
	require.NoError(t, SaveTaskResult(ctx, repo, res, now))
	assert.Equal(t, "2024-03-01T11:00:00Z", res.Date)
	require.NoError(t, SaveTaskResult(ctx, repo, &domain.TaskResult{TaskID: "t2"}, now))

	t.Run("rejects results of unknown tasks", func(t *testing.T) {
		err := SaveTaskResult(ctx, repo, &domain.TaskResult{TaskID: "nope"}, now)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("filters by task", func(t *testing.T) {
		results, err := ExportTaskResults(ctx, repo, domain.IDs("t2"), false)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, domain.ID("t2"), results[0].TaskID)

		all, err := ExportTaskResults(ctx, repo, nil, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("denormalizes with the embedded image", func(t *testing.T) {
		results, err := ExportTaskResults(ctx, repo, domain.IDs("t1"), true)
		require.NoError(t, err)
		require.Len(t, results, 1)
		bbox := results[0].Results[0].Annotations[0].BBox
		assert.InDeltaSlice(t, []float64{10, 20, 30, 40}, bbox, 1e-9)
		assert.Nil(t, results[0].Results[1])
	})

	t.Run("drop clears everything", func(t *testing.T) {
		require.NoError(t, DropTasks(ctx, repo))
		results, err := ExportTaskResults(ctx, repo, nil, false)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
