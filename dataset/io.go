package dataset

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/lewtec/cocotool/internal/domain"
)

// HostFS returns the filesystem rooted at the directory holding path
// together with the name of path inside it
func HostFS(path string) (billy.Filesystem, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	return osfs.New(filepath.Dir(abs)), filepath.Base(abs), nil
}

// ReadDataset reads and parses a dataset document
func ReadDataset(fs billy.Filesystem, name string) (*domain.Dataset, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("while reading dataset %q: %w", name, err)
	}
	ds, err := ParseDataset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}

// WriteDataset serializes a dataset document. Empty sections are written
// as empty arrays.
func WriteDataset(fs billy.Filesystem, name string, ds *domain.Dataset) error {
	out := domain.Dataset{
		Categories:  compact(ds.Categories),
		Images:      compact(ds.Images),
		Annotations: compact(ds.Annotations),
		Licenses:    compact(ds.Licenses),
	}
	return WriteJSON(fs, name, &out)
}

// WriteJSON encodes v into the named file, creating parent directories
func WriteJSON(fs billy.Filesystem, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("while encoding %q: %w", name, err)
	}
	if dir := filepath.Dir(name); dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("while creating %q: %w", dir, err)
		}
	}
	if err := util.WriteFile(fs, name, data, 0o644); err != nil {
		return fmt.Errorf("while writing %q: %w", name, err)
	}
	return nil
}

// ReadTaskData reads and parses a task document
func ReadTaskData(fs billy.Filesystem, name string) (*TaskData, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("while reading tasks %q: %w", name, err)
	}
	td, err := ParseTaskData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return td, nil
}
