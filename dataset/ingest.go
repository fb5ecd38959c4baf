package dataset

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/util"
	"github.com/lewtec/cocotool/internal/domain"
)

// HashFile returns the hex sha256 of a file's content
func HashFile(fs billy.Filesystem, name string) (string, error) {
	f, err := fs.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// IngestImages walks fs for decodable images and returns one image record
// per distinct content, identified by its sha256. Files that are not
// images are skipped. Sizing and hashing run on jobs workers; the result
// is ordered by path.
func IngestImages(fs billy.Filesystem, jobs int, urlPrefix string) ([]*domain.Image, error) {
	var paths []string
	err := util.Walk(fs, ".", func(name string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			paths = append(paths, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("while listing images: %w", err)
	}
	slices.Sort(paths)

	if jobs < 1 {
		jobs = 1
	}
	found := make([]*domain.Image, len(paths))
	queue := make(chan int, 10)
	var wg sync.WaitGroup
	ingestWorker := func() {
		defer wg.Done()
		for i := range queue {
			img, err := ingestImage(fs, paths[i], urlPrefix)
			if err != nil {
				log.Printf("dataset: skipping '%s': %s", paths[i], err)
				continue
			}
			found[i] = img
		}
	}
	for range jobs {
		wg.Add(1)
		go ingestWorker()
	}
	for i := range paths {
		queue <- i
	}
	close(queue)
	wg.Wait()

	seen := map[domain.ID]string{}
	images := []*domain.Image{}
	for i, img := range found {
		if img == nil {
			continue
		}
		if first, ok := seen[img.ID]; ok {
			log.Printf("dataset: '%s' has the same content as '%s'", paths[i], first)
			continue
		}
		seen[img.ID] = paths[i]
		images = append(images, img)
	}
	log.Printf("dataset: found %d images", len(images))
	return images, nil
}

func ingestImage(fs billy.Filesystem, name, urlPrefix string) (*domain.Image, error) {
	width, height, err := ImageSize(fs, name)
	if err != nil {
		return nil, err
	}
	hash, err := HashFile(fs, name)
	if err != nil {
		return nil, err
	}
	rel := strings.TrimPrefix(path.Clean(name), "/")
	img := &domain.Image{
		ID:       domain.ID(hash),
		Width:    width,
		Height:   height,
		FileName: rel,
	}
	if urlPrefix != "" {
		img.URL = urlPrefix + "/" + rel
	}
	return img, nil
}
