package annotation

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/lewtec/cocotool/dataset"
	"github.com/lewtec/cocotool/internal/domain"
)

// maxBodySize bounds the JSON bodies accepted by the save routes
const maxBodySize = 32 << 20

type AnnotatorApp struct {
	Store  *domain.Store
	Config *Config

	// Now stamps task results, time.Now when nil
	Now func() time.Time
}

func (a *AnnotatorApp) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// EditImageResponse is what the editor needs to work on one image
type EditImageResponse struct {
	Image       *domain.Image        `json:"image"`
	Annotations []*domain.Annotation `json:"annotations"`
	Categories  []*domain.Category   `json:"categories"`
}

// SaveAnnotationsRequest is the body of an editing session save
type SaveAnnotationsRequest struct {
	ImageID     domain.ID                 `json:"image_id"`
	Annotations []*dataset.AnnotationEdit `json:"annotations"`
}

// BBoxTaskResponse is what a worker needs to start a bounding box task
type BBoxTaskResponse struct {
	Task         *domain.BBoxTask `json:"task"`
	Instructions *Instructions    `json:"instructions"`
	Images       []*domain.Image  `json:"images"`
}

func (a *AnnotatorApp) GetHTTPHandler() http.Handler {
	router := httprouter.New()
	router.GET("/edit_image/:image_id", a.httpEditImage)
	router.POST("/annotations/save", a.httpSaveAnnotations)
	router.GET("/bbox_task/:task_id", a.httpBBoxTask)
	router.POST("/bbox_task/save", a.httpSaveBBoxTask)
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	var handler http.Handler = router
	handler = HTTPLogger(handler)
	return handler
}

func (a *AnnotatorApp) httpEditImage(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx := r.Context()
	imageID := domain.ID(params.ByName("image_id"))
	image, err := a.Store.Images.GetByID(ctx, imageID)
	if err != nil {
		writeError(w, fmt.Errorf("while fetching image %q: %w", imageID, err))
		return
	}
	if image == nil {
		writeError(w, fmt.Errorf("image %q: %w", imageID, domain.ErrNotFound))
		return
	}
	annotations, err := a.Store.Annotations.ListForImage(ctx, imageID)
	if err != nil {
		writeError(w, fmt.Errorf("while fetching annotations of image %q: %w", imageID, err))
		return
	}
	categories, err := a.Store.Categories.List(ctx)
	if err != nil {
		writeError(w, fmt.Errorf("while fetching categories: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, EditImageResponse{
		Image:       image,
		Annotations: annotations,
		Categories:  categories,
	})
}

func (a *AnnotatorApp) httpSaveAnnotations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req SaveAnnotationsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid body: %s", err)})
		return
	}
	if req.ImageID == "" {
		imageID, err := dataset.ImageOfEdits(req.Annotations)
		if err != nil {
			writeError(w, err)
			return
		}
		req.ImageID = imageID
	}
	result, err := dataset.SaveAnnotations(r.Context(), a.Store.Annotations, req.ImageID, req.Annotations)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *AnnotatorApp) httpBBoxTask(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	ctx := r.Context()
	taskID := domain.ID(params.ByName("task_id"))
	task, err := a.Store.Tasks.GetTask(ctx, taskID)
	if err != nil {
		writeError(w, fmt.Errorf("while fetching task %q: %w", taskID, err))
		return
	}
	if task == nil {
		writeError(w, fmt.Errorf("task %q: %w", taskID, domain.ErrNotFound))
		return
	}
	instructions, err := a.Store.Tasks.GetInstructions(ctx, task.InstructionsID)
	if err != nil {
		writeError(w, fmt.Errorf("while fetching instructions %q: %w", task.InstructionsID, err))
		return
	}
	images := make([]*domain.Image, 0, len(task.ImageIDs))
	for _, imageID := range task.ImageIDs {
		image, err := a.Store.Images.GetByID(ctx, imageID)
		if err != nil {
			writeError(w, fmt.Errorf("while fetching image %q: %w", imageID, err))
			return
		}
		if image == nil {
			log.Printf("http: task %q references missing image %q", taskID, imageID)
			continue
		}
		images = append(images, image)
	}
	writeJSON(w, http.StatusOK, BBoxTaskResponse{
		Task:         task,
		Instructions: RenderInstructions(instructions),
		Images:       images,
	})
}

func (a *AnnotatorApp) httpSaveBBoxTask(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var res domain.TaskResult
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&res); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid body: %s", err)})
		return
	}
	if err := dataset.SaveTaskResult(r.Context(), a.Store.Tasks, &res, a.now()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": res.Date})
}
