package domain

// Dataset is the COCO-style exchange document
type Dataset struct {
	Categories  []*Category   `json:"categories"`
	Images      []*Image      `json:"images"`
	Annotations []*Annotation `json:"annotations"`
	Licenses    []*License    `json:"licenses"`
}

// Store groups the repositories every core operation works against
type Store struct {
	Categories  CategoryRepository
	Images      ImageRepository
	Annotations AnnotationRepository
	Licenses    LicenseRepository
	Tasks       TaskRepository
}
