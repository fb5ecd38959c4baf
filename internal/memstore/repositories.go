package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/lewtec/cocotool/internal/domain"
)

// ImageRepository implements domain.ImageRepository in memory
type ImageRepository struct {
	docs *collection[domain.Image]
}

func (r *ImageRepository) Insert(ctx context.Context, img *domain.Image) error {
	return r.docs.insert(string(img.ID), img)
}

func (r *ImageRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Image, error) {
	return r.docs.get(string(id))
}

func (r *ImageRepository) List(ctx context.Context) ([]*domain.Image, error) {
	return r.docs.list(nil)
}

func (r *ImageRepository) ListIDs(ctx context.Context) ([]domain.ID, error) {
	return domain.IDs(r.docs.keys()...), nil
}

func (r *ImageRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(), nil
}

func (r *ImageRepository) DeleteAll(ctx context.Context) error {
	r.docs.clear()
	return nil
}

// CategoryRepository implements domain.CategoryRepository in memory
type CategoryRepository struct {
	docs *collection[domain.Category]
}

func (r *CategoryRepository) Insert(ctx context.Context, cat *domain.Category) error {
	return r.docs.insert(string(cat.ID), cat)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Category, error) {
	return r.docs.get(string(id))
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.docs.list(nil)
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(), nil
}

func (r *CategoryRepository) DeleteAll(ctx context.Context) error {
	r.docs.clear()
	return nil
}

// LicenseRepository implements domain.LicenseRepository in memory
type LicenseRepository struct {
	docs *collection[domain.License]
}

func (r *LicenseRepository) Insert(ctx context.Context, lic *domain.License) error {
	return r.docs.insert(string(lic.ID), lic)
}

func (r *LicenseRepository) List(ctx context.Context) ([]*domain.License, error) {
	return r.docs.list(nil)
}

func (r *LicenseRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(), nil
}

func (r *LicenseRepository) DeleteAll(ctx context.Context) error {
	r.docs.clear()
	return nil
}

// AnnotationRepository implements domain.AnnotationRepository in memory.
// Documents are keyed by store key; ids tracks the unique dataset id.
type AnnotationRepository struct {
	mu   sync.Mutex
	docs *collection[domain.Annotation]
	ids  map[domain.ID]string
}

// NewAnnotationRepository creates an empty AnnotationRepository
func NewAnnotationRepository() *AnnotationRepository {
	return &AnnotationRepository{
		docs: newCollection[domain.Annotation](),
		ids:  map[domain.ID]string{},
	}
}

func (r *AnnotationRepository) Insert(ctx context.Context, ann *domain.Annotation) error {
	if ann.Key == "" {
		return fmt.Errorf("annotation %q has no key", ann.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.ids[ann.ID]; taken {
		return fmt.Errorf("%w: annotation id %q", domain.ErrDuplicateKey, ann.ID)
	}
	if err := r.docs.insert(ann.Key, ann); err != nil {
		return err
	}
	r.ids[ann.ID] = ann.Key
	return nil
}

func (r *AnnotationRepository) GetByKey(ctx context.Context, key string) (*domain.Annotation, error) {
	return r.docs.get(key)
}

func (r *AnnotationRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Annotation, error) {
	r.mu.Lock()
	key, ok := r.ids[id]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.docs.get(key)
}

func (r *AnnotationRepository) ListForImage(ctx context.Context, imageID domain.ID) ([]*domain.Annotation, error) {
	return r.docs.list(func(a *domain.Annotation) bool { return a.ImageID == imageID })
}

func (r *AnnotationRepository) List(ctx context.Context) ([]*domain.Annotation, error) {
	return r.docs.list(nil)
}

func (r *AnnotationRepository) Replace(ctx context.Context, ann *domain.Annotation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, err := r.docs.get(ann.Key)
	if err != nil {
		return err
	}
	if old == nil {
		return fmt.Errorf("annotation %q: %w", ann.Key, domain.ErrNotFound)
	}
	if owner, taken := r.ids[ann.ID]; taken && owner != ann.Key {
		return fmt.Errorf("%w: annotation id %q", domain.ErrDuplicateKey, ann.ID)
	}
	if _, err := r.docs.set(ann.Key, ann); err != nil {
		return err
	}
	delete(r.ids, old.ID)
	r.ids[ann.ID] = ann.Key
	return nil
}

func (r *AnnotationRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, err := r.docs.get(key)
	if err != nil || old == nil {
		return err
	}
	delete(r.ids, old.ID)
	r.docs.remove(key)
	return nil
}

func (r *AnnotationRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.count(), nil
}

func (r *AnnotationRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs.clear()
	r.ids = map[domain.ID]string{}
	return nil
}

// TaskRepository implements domain.TaskRepository in memory
type TaskRepository struct {
	tasks        *collection[domain.BBoxTask]
	instructions *collection[domain.TaskInstructions]

	mu      sync.RWMutex
	results []*domain.TaskResult
}

// NewTaskRepository creates an empty TaskRepository
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks:        newCollection[domain.BBoxTask](),
		instructions: newCollection[domain.TaskInstructions](),
	}
}

func (r *TaskRepository) InsertTask(ctx context.Context, task *domain.BBoxTask) error {
	return r.tasks.insert(string(task.ID), task)
}

func (r *TaskRepository) GetTask(ctx context.Context, id domain.ID) (*domain.BBoxTask, error) {
	return r.tasks.get(string(id))
}

func (r *TaskRepository) ListTasks(ctx context.Context) ([]*domain.BBoxTask, error) {
	return r.tasks.list(nil)
}

func (r *TaskRepository) InsertInstructions(ctx context.Context, ins *domain.TaskInstructions) error {
	return r.instructions.insert(string(ins.ID), ins)
}

func (r *TaskRepository) GetInstructions(ctx context.Context, id domain.ID) (*domain.TaskInstructions, error) {
	return r.instructions.get(string(id))
}

func (r *TaskRepository) InsertResult(ctx context.Context, res *domain.TaskResult) error {
	doc, err := clone(res)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, doc)
	return nil
}

func (r *TaskRepository) ListResults(ctx context.Context, taskIDs []domain.ID) ([]*domain.TaskResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []*domain.TaskResult{}
	for _, res := range r.results {
		if len(taskIDs) > 0 && !slices.Contains(taskIDs, res.TaskID) {
			continue
		}
		cp, err := clone(res)
		if err != nil {
			return nil, err
		}
		result = append(result, cp)
	}
	return result, nil
}

func (r *TaskRepository) DeleteAll(ctx context.Context) error {
	r.tasks.clear()
	r.instructions.clear()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = nil
	return nil
}

var (
	_ domain.ImageRepository      = (*ImageRepository)(nil)
	_ domain.CategoryRepository   = (*CategoryRepository)(nil)
	_ domain.LicenseRepository    = (*LicenseRepository)(nil)
	_ domain.AnnotationRepository = (*AnnotationRepository)(nil)
	_ domain.TaskRepository       = (*TaskRepository)(nil)
)
