// Package memstore keeps every collection in process memory. It backs the
// same repository interfaces as the SQLite store and is used by tests and
// one-shot conversions that never touch disk.
package memstore

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/lewtec/cocotool/internal/domain"
)

// collection is an insertion ordered map of JSON-cloned documents
type collection[T any] struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]*T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{docs: map[string]*T{}}
}

// clone deep copies through JSON so callers never alias stored state
func clone[T any](v *T) (*T, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *collection[T]) insert(key string, v *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[key]; ok {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateKey, key)
	}
	doc, err := clone(v)
	if err != nil {
		return err
	}
	c.docs[key] = doc
	c.order = append(c.order, key)
	return nil
}

// set overwrites an existing document, reporting whether it was there
func (c *collection[T]) set(key string, v *T) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[key]; !ok {
		return false, nil
	}
	doc, err := clone(v)
	if err != nil {
		return false, err
	}
	c.docs[key] = doc
	return true, nil
}

func (c *collection[T]) get(key string) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[key]
	if !ok {
		return nil, nil
	}
	return clone(doc)
}

func (c *collection[T]) list(keep func(*T) bool) ([]*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := []*T{}
	for _, key := range c.order {
		doc := c.docs[key]
		if keep != nil && !keep(doc) {
			continue
		}
		cp, err := clone(doc)
		if err != nil {
			return nil, err
		}
		result = append(result, cp)
	}
	return result, nil
}

func (c *collection[T]) keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

func (c *collection[T]) count() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.order))
}

func (c *collection[T]) remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[key]; !ok {
		return
	}
	delete(c.docs, key)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
}

func (c *collection[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = map[string]*T{}
	c.order = nil
}

// New creates an empty in-memory store
func New() *domain.Store {
	return &domain.Store{
		Categories:  &CategoryRepository{docs: newCollection[domain.Category]()},
		Images:      &ImageRepository{docs: newCollection[domain.Image]()},
		Annotations: NewAnnotationRepository(),
		Licenses:    &LicenseRepository{docs: newCollection[domain.License]()},
		Tasks:       NewTaskRepository(),
	}
}
