package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/lewtec/cocotool/internal/domain"
)

// DefaultImagesPerTask is the task size used when none is given
const DefaultImagesPerTask = 20

// TaskData is the bbox task exchange document
type TaskData struct {
	Tasks        []*domain.BBoxTask         `json:"tasks"`
	Instructions []*domain.TaskInstructions `json:"instructions,omitempty"`
}

// TaskLoadReport holds the batch results of a task load
type TaskLoadReport struct {
	Instructions BatchResult
	Tasks        BatchResult
}

// ParseTaskData decodes a task document, which must carry a tasks section
func ParseTaskData(data []byte) (*TaskData, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("while decoding tasks: %w", err)
	}
	if err := requireSections(raw, "tasks"); err != nil {
		return nil, err
	}
	var td TaskData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("while decoding tasks: %w", err)
	}
	td.Tasks = compact(td.Tasks)
	td.Instructions = compact(td.Instructions)
	return &td, nil
}

// LoadTasks inserts the instructions and then the tasks of a task
// document, skipping records whose id is already stored
func LoadTasks(ctx context.Context, repo domain.TaskRepository, td *TaskData) (*TaskLoadReport, error) {
	report := &TaskLoadReport{}
	var err error
	report.Instructions, err = insertBatch(ctx, "instructions", compact(td.Instructions),
		func(i *domain.TaskInstructions) domain.ID { return i.ID }, repo.InsertInstructions)
	if err != nil {
		return report, err
	}
	report.Tasks, err = insertBatch(ctx, "tasks", compact(td.Tasks),
		func(t *domain.BBoxTask) domain.ID { return t.ID }, repo.InsertTask)
	if err != nil {
		return report, err
	}
	log.Printf("dataset: %s", report.Instructions)
	log.Printf("dataset: %s", report.Tasks)
	return report, nil
}

// CreateTasksForAllImages shuffles every stored image into tasks of
// perTask images each. The last task holds the remainder.
func CreateTasksForAllImages(ctx context.Context, store *domain.Store, categoryID, instructionsID domain.ID, perTask int, rng *rand.Rand) ([]*domain.BBoxTask, error) {
	if perTask <= 0 {
		perTask = DefaultImagesPerTask
	}
	imageIDs, err := store.Images.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("while listing images: %w", err)
	}
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(imageIDs), func(i, j int) {
		imageIDs[i], imageIDs[j] = imageIDs[j], imageIDs[i]
	})

	tasks := []*domain.BBoxTask{}
	for start := 0; start < len(imageIDs); start += perTask {
		end := min(start+perTask, len(imageIDs))
		id, err := uuid.NewUUID()
		if err != nil {
			return nil, fmt.Errorf("while minting task id: %w", err)
		}
		tasks = append(tasks, &domain.BBoxTask{
			ID:             domain.ID(id.String()),
			ImageIDs:       append([]domain.ID{}, imageIDs[start:end]...),
			InstructionsID: instructionsID,
			CategoryID:     categoryID,
		})
	}
	if _, err := insertBatch(ctx, "tasks", tasks,
		func(t *domain.BBoxTask) domain.ID { return t.ID }, store.Tasks.InsertTask); err != nil {
		return nil, err
	}
	log.Printf("dataset: created %d tasks over %d images", len(tasks), len(imageIDs))
	return tasks, nil
}

// SaveTaskResult stores what a worker submitted, stamping it with now
func SaveTaskResult(ctx context.Context, repo domain.TaskRepository, res *domain.TaskResult, now time.Time) error {
	if res.TaskID == "" {
		return fmt.Errorf("%w: task result has no task id", domain.ErrNotFound)
	}
	task, err := repo.GetTask(ctx, res.TaskID)
	if err != nil {
		return fmt.Errorf("while looking up task %q: %w", res.TaskID, err)
	}
	if task == nil {
		return fmt.Errorf("task %q: %w", res.TaskID, domain.ErrNotFound)
	}
	res.Date = now.UTC().Format(time.RFC3339)
	if err := repo.InsertResult(ctx, res); err != nil {
		return fmt.Errorf("while saving result of task %q: %w", res.TaskID, err)
	}
	return nil
}

// ExportTaskResults returns the results of the given tasks, or of every
// task when taskIDs is empty. With denormalize, annotation geometry is
// converted to pixels using the image embedded in each result.
func ExportTaskResults(ctx context.Context, repo domain.TaskRepository, taskIDs []domain.ID, denormalize bool) ([]*domain.TaskResult, error) {
	results, err := repo.ListResults(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("while listing task results: %w", err)
	}
	log.Printf("dataset: found %d task results", len(results))
	if !denormalize {
		return results, nil
	}
	for _, res := range results {
		for _, imageResult := range res.Results {
			if imageResult == nil {
				continue
			}
			for i, ann := range imageResult.Annotations {
				if ann == nil {
					continue
				}
				if imageResult.Image == nil {
					return nil, &domain.DanglingReferenceError{AnnotationID: ann.ID, ImageID: ann.ImageID}
				}
				imageResult.Annotations[i], err = DenormalizeGeometry(ann, imageResult.Image.Width, imageResult.Image.Height)
				if err != nil {
					return nil, fmt.Errorf("while denormalizing result of task %q: %w", res.TaskID, err)
				}
			}
		}
	}
	return results, nil
}

// TaskIDs returns the distinct ids of the tasks in td
func (td *TaskData) TaskIDs() []domain.ID {
	seen := map[domain.ID]bool{}
	ids := []domain.ID{}
	for _, task := range td.Tasks {
		if task == nil || seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		ids = append(ids, task.ID)
	}
	return ids
}

// DropTasks removes every task, instruction and result
func DropTasks(ctx context.Context, repo domain.TaskRepository) error {
	log.Printf("dataset: dropping task collections")
	if err := repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("while dropping tasks: %w", err)
	}
	return nil
}
