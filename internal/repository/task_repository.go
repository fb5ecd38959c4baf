package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/lewtec/cocotool/internal/domain"
)

// TaskRepository implements domain.TaskRepository on the bbox_task tables
type TaskRepository struct {
	db           *sql.DB
	tasks        documentTable
	instructions documentTable
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{
		db:           db,
		tasks:        documentTable{db: db, name: "bbox_task"},
		instructions: documentTable{db: db, name: "bbox_task_instructions"},
	}
}

func (r *TaskRepository) InsertTask(ctx context.Context, task *domain.BBoxTask) error {
	return r.tasks.insert(ctx, task.ID, task)
}

func (r *TaskRepository) GetTask(ctx context.Context, id domain.ID) (*domain.BBoxTask, error) {
	var task domain.BBoxTask
	found, err := r.tasks.get(ctx, id, &task)
	if err != nil || !found {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListTasks(ctx context.Context) ([]*domain.BBoxTask, error) {
	return listDocuments[domain.BBoxTask](ctx, r.db, "SELECT doc FROM bbox_task ORDER BY rowid")
}

func (r *TaskRepository) InsertInstructions(ctx context.Context, ins *domain.TaskInstructions) error {
	return r.instructions.insert(ctx, ins.ID, ins)
}

func (r *TaskRepository) GetInstructions(ctx context.Context, id domain.ID) (*domain.TaskInstructions, error) {
	var ins domain.TaskInstructions
	found, err := r.instructions.get(ctx, id, &ins)
	if err != nil || !found {
		return nil, err
	}
	return &ins, nil
}

func (r *TaskRepository) InsertResult(ctx context.Context, res *domain.TaskResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "INSERT INTO bbox_task_result (task_id, doc) VALUES (?, ?)", string(res.TaskID), string(data))
	return err
}

func (r *TaskRepository) ListResults(ctx context.Context, taskIDs []domain.ID) ([]*domain.TaskResult, error) {
	if len(taskIDs) == 0 {
		return listDocuments[domain.TaskResult](ctx, r.db, "SELECT doc FROM bbox_task_result ORDER BY id")
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(taskIDs)), ",")
	args := make([]any, len(taskIDs))
	for i, id := range taskIDs {
		args[i] = string(id)
	}
	return listDocuments[domain.TaskResult](ctx, r.db,
		"SELECT doc FROM bbox_task_result WHERE task_id IN ("+placeholders+") ORDER BY id", args...)
}

func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	for _, table := range []string{"bbox_task", "bbox_task_instructions", "bbox_task_result"} {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Verify that TaskRepository implements domain.TaskRepository
var _ domain.TaskRepository = (*TaskRepository)(nil)
