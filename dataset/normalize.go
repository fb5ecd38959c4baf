package dataset

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lewtec/cocotool/internal/domain"
)

// Palette holds the colours assigned to keypoints, cycled by keypoint index
var Palette = []string{
	"#e6194b", // red
	"#3cb44b", // green
	"#ffe119", // yellow
	"#0082c8", // blue
	"#f58231", // orange
	"#911eb4", // purple
	"#46f0f0", // cyan
	"#f032e6", // magenta
	"#d2f53c", // lime
	"#fabebe", // pink
	"#008080", // teal
	"#e6beff", // lavender
	"#aa6e28", // brown
	"#fffac8", // beige
	"#800000", // maroon
	"#aaffc3", // mint
	"#808000", // olive
	"#ffd8b1", // coral
	"#000080", // navy
	"#808080", // grey
	"#FFFFFF", // white
	"#000000", // black
}

// DatasetSections are the top-level keys every dataset document must carry
var DatasetSections = []string{"categories", "images", "annotations", "licenses"}

// ParseDataset decodes a dataset document. Numeric identifiers are coerced
// to strings while decoding. The result is not yet normalized.
func ParseDataset(data []byte) (*domain.Dataset, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("while decoding dataset: %w", err)
	}
	if err := requireSections(raw, DatasetSections...); err != nil {
		return nil, err
	}
	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("while decoding dataset: %w", err)
	}
	return &ds, nil
}

func requireSections(raw map[string]json.RawMessage, sections ...string) error {
	for _, section := range sections {
		if _, ok := raw[section]; !ok {
			return fmt.Errorf("%w: failed to find %q in dataset object", domain.ErrMissingSection, section)
		}
	}
	return nil
}

// KeypointStyle derives one palette colour per keypoint name
func KeypointStyle(keypoints []string) []string {
	style := make([]string, len(keypoints))
	for i := range keypoints {
		style[i] = Palette[i%len(Palette)]
	}
	return style
}

// NormalizeDataset fills defaults and applies schema upgrades in place. It
// is idempotent and never fails.
func NormalizeDataset(ds *domain.Dataset) {
	ds.Categories = compact(ds.Categories)
	ds.Images = compact(ds.Images)
	ds.Annotations = compact(ds.Annotations)
	ds.Licenses = compact(ds.Licenses)

	for _, cat := range ds.Categories {
		NormalizeCategory(cat)
	}
	for _, img := range ds.Images {
		NormalizeImage(img)
	}
	for _, ann := range ds.Annotations {
		NormalizeAnnotation(ann)
	}
}

// NormalizeCategory backfills the keypoint style. An explicitly supplied
// style is kept even when its length does not match.
func NormalizeCategory(cat *domain.Category) {
	if len(cat.Keypoints) == 0 {
		return
	}
	if len(cat.KeypointsStyle) == 0 {
		cat.KeypointsStyle = KeypointStyle(cat.Keypoints)
		return
	}
	if len(cat.KeypointsStyle) != len(cat.Keypoints) {
		log.Printf("dataset: category %q has %d keypoints but %d styles", cat.ID, len(cat.Keypoints), len(cat.KeypointsStyle))
	}
}

// NormalizeImage moves the legacy coco_url into url
func NormalizeImage(img *domain.Image) {
	if img.URL == "" {
		img.URL = img.CocoURL
	}
	img.CocoURL = ""
}

// NormalizeAnnotation fills the bbox and keypoint count defaults
func NormalizeAnnotation(ann *domain.Annotation) {
	if ann.BBox == nil {
		ann.BBox = []float64{}
	}
	if ann.NumKeypoints == nil && len(ann.Keypoints) > 0 {
		n := CountLabeled(ann.Keypoints)
		ann.NumKeypoints = &n
	}
}

// CountLabeled returns the number of keypoint triples with non-zero visibility
func CountLabeled(keypoints []float64) int {
	n := 0
	for i := 2; i < len(keypoints); i += 3 {
		if keypoints[i] != domain.VisibilityUnlabeled {
			n++
		}
	}
	return n
}

// compact drops null entries and turns a nil section into an empty one
func compact[T any](items []*T) []*T {
	result := make([]*T, 0, len(items))
	for _, item := range items {
		if item != nil {
			result = append(result, item)
		}
	}
	return result
}
