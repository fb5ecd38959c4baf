package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/lewtec/cocotool/internal/domain"
)

func TestTaskRepository(t *testing.T) {
	repo := NewTaskRepository(SetupTestDB(t))
	ctx := context.Background()

	task := &domain.BBoxTask{ID: "t1", ImageIDs: domain.IDs("1", "2"), InstructionsID: "i1", CategoryID: "1"}
	if err := repo.InsertTask(ctx, task); err != nil {
		t.Fatalf("InsertTask() error = %v", err)
	}

	t.Run("retrieves task", func(t *testing.T) {
		got, err := repo.GetTask(ctx, "t1")
		if err != nil {
			t.Fatalf("GetTask() error = %v", err)
		}
		if got == nil || len(got.ImageIDs) != 2 {
			t.Errorf("GetTask() = %+v", got)
		}
	})

	t.Run("rejects duplicate task", func(t *testing.T) {
		if err := repo.InsertTask(ctx, task); !errors.Is(err, domain.ErrDuplicateKey) {
			t.Errorf("InsertTask() error = %v, want ErrDuplicateKey", err)
		}
	})

	t.Run("returns nil for missing instructions", func(t *testing.T) {
		ins, err := repo.GetInstructions(ctx, "nope")
		if err != nil || ins != nil {
			t.Errorf("GetInstructions() = %v, %v", ins, err)
		}
	})

	t.Run("filters results by task", func(t *testing.T) {
		repo.InsertResult(ctx, &domain.TaskResult{TaskID: "t1", Time: 1})
		repo.InsertResult(ctx, &domain.TaskResult{TaskID: "t2", Time: 2})
		repo.InsertResult(ctx, &domain.TaskResult{TaskID: "t1", Time: 3})

		results, err := repo.ListResults(ctx, domain.IDs("t1"))
		if err != nil {
			t.Fatalf("ListResults() error = %v", err)
		}
		if len(results) != 2 {
			t.Errorf("Got %d results, want 2", len(results))
		}

		all, err := repo.ListResults(ctx, nil)
		if err != nil {
			t.Fatalf("ListResults() error = %v", err)
		}
		if len(all) != 3 {
			t.Errorf("Got %d results, want 3", len(all))
		}
	})

	t.Run("drops everything", func(t *testing.T) {
		if err := repo.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}
		tasks, _ := repo.ListTasks(ctx)
		results, _ := repo.ListResults(ctx, nil)
		if len(tasks) != 0 || len(results) != 0 {
			t.Errorf("expected empty tables, got %d tasks and %d results", len(tasks), len(results))
		}
	})
}
