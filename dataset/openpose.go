package dataset

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"github.com/lewtec/cocotool/internal/domain"
)

// DefaultImageURLPrefix is where converted OpenPose images are served from
const DefaultImageURLPrefix = "https://s3.amazonaws.com/pai-datastore/images"

const keypointsSuffix = "_keypoints.json"

// openPoseFrame is the detector output for a single image
type openPoseFrame struct {
	People []struct {
		PoseKeypoints2D []float64 `json:"pose_keypoints_2d"`
	} `json:"people"`
}

// PersonCategory is the COCO-18 person category of converted datasets
func PersonCategory() *domain.Category {
	cat := &domain.Category{
		ID:            "1",
		Name:          "person",
		Supercategory: "person",
		Keypoints:     slices.Clone(COCO18Names),
		Skeleton:      slices.Clone(COCO18Skeleton),
	}
	NormalizeCategory(cat)
	return cat
}

// ConvertOpenPose builds a dataset out of a directory of OpenPose BODY_25
// detections. Every <name>_keypoints.json file in keypointsFS becomes an
// image, numbered from 1 in name order, whose size is read from
// <name>.jpg in imagesFS. Each detected person becomes a COCO-18 keypoint
// annotation.
func ConvertOpenPose(keypointsFS, imagesFS billy.Filesystem, urlPrefix string) (*domain.Dataset, error) {
	files, err := util.Glob(keypointsFS, "*"+keypointsSuffix)
	if err != nil {
		return nil, fmt.Errorf("while listing keypoint files: %w", err)
	}
	slices.Sort(files)

	ds := &domain.Dataset{
		Categories:  []*domain.Category{PersonCategory()},
		Images:      []*domain.Image{},
		Annotations: []*domain.Annotation{},
		Licenses:    []*domain.License{{ID: "1", Name: "Proprietary"}},
	}
	for i, file := range files {
		img, anns, err := convertFrame(keypointsFS, imagesFS, file, domain.ID(fmt.Sprint(i+1)), urlPrefix)
		if err != nil {
			return nil, err
		}
		ds.Images = append(ds.Images, img)
		ds.Annotations = append(ds.Annotations, anns...)
		if (i+1)%100 == 0 {
			log.Printf("dataset: %d images converted", i+1)
		}
	}
	log.Printf("dataset: converted %d images with %d people", len(ds.Images), len(ds.Annotations))
	return ds, nil
}

func convertFrame(keypointsFS, imagesFS billy.Filesystem, file string, imageID domain.ID, urlPrefix string) (*domain.Image, []*domain.Annotation, error) {
	data, err := util.ReadFile(keypointsFS, file)
	if err != nil {
		return nil, nil, fmt.Errorf("while reading %q: %w", file, err)
	}
	var frame openPoseFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, nil, fmt.Errorf("while decoding %q: %w", file, err)
	}

	name := strings.TrimSuffix(path.Base(file), keypointsSuffix)
	width, height, err := ImageSize(imagesFS, name+".jpg")
	if err != nil {
		return nil, nil, fmt.Errorf("while sizing image of %q: %w", file, err)
	}
	img := &domain.Image{
		ID:       imageID,
		Width:    width,
		Height:   height,
		FileName: name + ".jpg",
		License:  "1",
		URL:      strings.TrimSuffix(urlPrefix, "/") + "/" + url.QueryEscape(name) + ".jpg",
	}

	anns := make([]*domain.Annotation, 0, len(frame.People))
	for n, person := range frame.People {
		keypoints, err := RemapPose(person.PoseKeypoints2D)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: person %d: %w", file, n+1, err)
		}
		keypoints, err = VisibilityFromConfidence(keypoints)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: person %d: %w", file, n+1, err)
		}
		numKeypoints := COCO18Keypoints
		anns = append(anns, &domain.Annotation{
			ID:           domain.ID(fmt.Sprintf("%s_annotat_%d", imageID, n+1)),
			ImageID:      imageID,
			CategoryID:   "1",
			IsCrowd:      0,
			Keypoints:    keypoints,
			NumKeypoints: &numKeypoints,
			BBox:         BoundingBox(keypoints, float64(width), float64(height)),
		})
	}
	return img, anns, nil
}
