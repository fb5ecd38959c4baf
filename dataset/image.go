package dataset

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-git/go-billy/v6"
)

// ImageSize reads the dimensions of an image file from its header
func ImageSize(fs billy.Filesystem, name string) (width, height int, err error) {
	f, err := fs.Open(name)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("while decoding %q: %w", name, err)
	}
	return cfg.Width, cfg.Height, nil
}
