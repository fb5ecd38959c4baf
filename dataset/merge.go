package dataset

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/lewtec/cocotool/internal/domain"
)

// AnnotationEdit is one entry of an editing session save. An empty Key
// marks a record the client created during the session.
type AnnotationEdit struct {
	domain.Annotation
	Deleted bool `json:"deleted,omitempty"`
}

// IsNew reports whether the edit refers to a record that was never stored
func (e *AnnotationEdit) IsNew() bool {
	return e.Key == ""
}

// MergeResult counts what a save did to the store
type MergeResult struct {
	Created  []string
	Replaced int
	Deleted  int
}

// SaveAnnotations applies the edits of an editing session on imageID in
// submission order. Deleting removes the stored record, an edit of a
// stored record replaces it whole and a new record gets a freshly minted
// key, also used as its id when the client did not pick one. New records
// deleted before saving are ignored, as are edits of a record an earlier
// edit of the same save deleted.
//
// Every edit is checked before the first write, taking earlier edits of
// the save into account: an edit naming a record that does not belong to
// imageID fails with ErrOutOfScope and an id held by another record fails
// with ErrDuplicateKey, and nothing is written. Concurrent saves on the
// same image are not coordinated; the last write to a record wins.
func SaveAnnotations(ctx context.Context, repo domain.AnnotationRepository, imageID domain.ID, edits []*AnnotationEdit) (*MergeResult, error) {
	steps, err := planMerge(ctx, repo, imageID, edits)
	if err != nil {
		return nil, err
	}

	result := &MergeResult{}
	for _, step := range steps {
		switch step.op {
		case opDelete:
			if err := repo.Delete(ctx, step.ann.Key); err != nil {
				return result, fmt.Errorf("while deleting annotation %q: %w", step.ann.Key, err)
			}
			result.Deleted++
		case opCreate:
			if err := repo.Insert(ctx, step.ann); err != nil {
				return result, fmt.Errorf("while creating annotation %q: %w", step.ann.ID, err)
			}
			result.Created = append(result.Created, step.ann.Key)
		case opReplace:
			if err := repo.Replace(ctx, step.ann); err != nil {
				return result, fmt.Errorf("while replacing annotation %q: %w", step.ann.Key, err)
			}
			result.Replaced++
		}
	}
	log.Printf("dataset: image %q: %d created, %d replaced, %d deleted", imageID, len(result.Created), result.Replaced, result.Deleted)
	return result, nil
}

type mergeOp int

const (
	opDelete mergeOp = iota
	opCreate
	opReplace
)

type mergeStep struct {
	op  mergeOp
	ann *domain.Annotation
}

// mergePlan replays a save against the records of one image
type mergePlan struct {
	repo    domain.AnnotationRepository
	imageID domain.ID
	live    map[string]domain.ID // key -> id of records still on the image
	owners  map[domain.ID]string // id -> key, "" once released by the save
	steps   []mergeStep
}

// planMerge checks every edit and resolves it to the write it needs
func planMerge(ctx context.Context, repo domain.AnnotationRepository, imageID domain.ID, edits []*AnnotationEdit) ([]mergeStep, error) {
	if imageID == "" {
		return nil, fmt.Errorf("%w: no image to save annotations for", domain.ErrOutOfScope)
	}
	current, err := repo.ListForImage(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("while listing annotations of image %q: %w", imageID, err)
	}
	plan := &mergePlan{
		repo:    repo,
		imageID: imageID,
		live:    make(map[string]domain.ID, len(current)),
		owners:  make(map[domain.ID]string, len(current)),
	}
	stored := make(map[string]bool, len(current))
	for _, ann := range current {
		stored[ann.Key] = true
		plan.live[ann.Key] = ann.ID
		plan.owners[ann.ID] = ann.Key
	}

	for _, edit := range edits {
		if edit == nil {
			continue
		}
		if edit.IsNew() {
			if edit.ImageID != "" && edit.ImageID != imageID {
				return nil, fmt.Errorf("%w: new annotation belongs to image %q", domain.ErrOutOfScope, edit.ImageID)
			}
			if edit.Deleted {
				continue
			}
			ann := edit.Annotation.Clone()
			ann.Key = uuid.NewString()
			if ann.ID == "" {
				ann.ID = domain.ID(ann.Key)
			}
			ann.ImageID = imageID
			NormalizeAnnotation(ann)
			if err := plan.claim(ctx, ann); err != nil {
				return nil, err
			}
			plan.steps = append(plan.steps, mergeStep{op: opCreate, ann: ann})
			continue
		}

		if !stored[edit.Key] {
			return nil, fmt.Errorf("%w: annotation %q is not on image %q", domain.ErrOutOfScope, edit.Key, imageID)
		}
		if !edit.Deleted && edit.ImageID != "" && edit.ImageID != imageID {
			return nil, fmt.Errorf("%w: annotation %q would move to image %q", domain.ErrOutOfScope, edit.Key, edit.ImageID)
		}
		oldID, ok := plan.live[edit.Key]
		if !ok {
			log.Printf("dataset: annotation %q was already deleted in this save, ignoring", edit.Key)
			continue
		}
		if edit.Deleted {
			plan.release(edit.Key, oldID)
			delete(plan.live, edit.Key)
			plan.steps = append(plan.steps, mergeStep{op: opDelete, ann: &domain.Annotation{Key: edit.Key}})
			continue
		}
		ann := edit.Annotation.Clone()
		ann.ImageID = imageID
		NormalizeAnnotation(ann)
		plan.release(edit.Key, oldID)
		if err := plan.claim(ctx, ann); err != nil {
			return nil, err
		}
		plan.live[edit.Key] = ann.ID
		plan.steps = append(plan.steps, mergeStep{op: opReplace, ann: ann})
	}
	return plan.steps, nil
}

func (p *mergePlan) release(key string, id domain.ID) {
	if p.owners[id] == key {
		p.owners[id] = ""
	}
}

// claim reserves ann.ID for ann.Key, failing if another record keeps it
func (p *mergePlan) claim(ctx context.Context, ann *domain.Annotation) error {
	owner, known := p.owners[ann.ID]
	if !known {
		other, err := p.repo.GetByID(ctx, ann.ID)
		if err != nil {
			return fmt.Errorf("while looking up annotation id %q: %w", ann.ID, err)
		}
		if other != nil {
			owner = other.Key
		}
	}
	if owner != "" && owner != ann.Key {
		return fmt.Errorf("%w: annotation id %q is held by %q", domain.ErrDuplicateKey, ann.ID, owner)
	}
	p.owners[ann.ID] = ann.Key
	return nil
}

// ImageOfEdits returns the single image the edits point at, used when a
// save does not name its image
func ImageOfEdits(edits []*AnnotationEdit) (domain.ID, error) {
	var imageID domain.ID
	for _, edit := range edits {
		if edit == nil || edit.ImageID == "" {
			continue
		}
		if imageID != "" && edit.ImageID != imageID {
			return "", fmt.Errorf("%w: edits span images %q and %q", domain.ErrOutOfScope, imageID, edit.ImageID)
		}
		imageID = edit.ImageID
	}
	if imageID == "" {
		return "", fmt.Errorf("%w: edits do not name an image", domain.ErrOutOfScope)
	}
	return imageID, nil
}
