package domain

import "context"

// BBoxTask assigns a group of images to a bounding box collection session
type BBoxTask struct {
	ID             ID   `json:"id"`
	ImageIDs       []ID `json:"image_ids"`
	InstructionsID ID   `json:"instructions_id"`
	CategoryID     ID   `json:"category_id"`
}

// TaskInstructions describes what workers should do in a task.
// Instructions is a link to further material and Examples are image urls.
type TaskInstructions struct {
	ID           ID       `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Instructions string   `json:"instructions"`
	Examples     []string `json:"examples"`
}

// TaskResult is what a worker submits after finishing a task
type TaskResult struct {
	TaskID   ID             `json:"task_id"`
	WorkerID string         `json:"worker_id,omitempty"`
	Time     float64        `json:"time"`
	Date     string         `json:"date"`
	Results  []*ImageResult `json:"results"`
}

// ImageResult holds the annotations drawn on one image of a task. Entries
// for images the worker never visited are null.
type ImageResult struct {
	Time        float64       `json:"time"`
	Annotations []*Annotation `json:"annotations"`
	Image       *Image        `json:"image"`
}

// TaskRepository defines the interface for bbox task storage operations
type TaskRepository interface {
	InsertTask(ctx context.Context, task *BBoxTask) error
	GetTask(ctx context.Context, id ID) (*BBoxTask, error)
	ListTasks(ctx context.Context) ([]*BBoxTask, error)

	InsertInstructions(ctx context.Context, ins *TaskInstructions) error
	GetInstructions(ctx context.Context, id ID) (*TaskInstructions, error)

	InsertResult(ctx context.Context, res *TaskResult) error
	// ListResults returns the results of the given tasks, or every result when taskIDs is empty
	ListResults(ctx context.Context, taskIDs []ID) ([]*TaskResult, error)

	// DeleteAll drops tasks, instructions and results
	DeleteAll(ctx context.Context) error
}
