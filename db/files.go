package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/a-h/kbserver/models"
)

const (
	NotesFileName     = "notes.json"
	DocumentsFileName = "documents.json"
	WebClipsFileName  = "web_clips.json"
)

// NewFiles creates a store that keeps each collection as a JSON array in dir.
// Call Init to create the directory and any missing files.
func NewFiles(dir string) *Files {
	return &Files{
		Dir:       dir,
		notes:     newCollection(filepath.Join(dir, NotesFileName), func(n models.Note) string { return n.ID }),
		documents: newCollection(filepath.Join(dir, DocumentsFileName), func(d models.Document) string { return d.ID }),
		webClips:  newCollection(filepath.Join(dir, WebClipsFileName), func(c models.WebClip) string { return c.ID }),
	}
}

type Files struct {
	Dir       string
	notes     *collection[models.Note]
	documents *collection[models.Document]
	webClips  *collection[models.WebClip]
}

var _ Store = (*Files)(nil)

func (f *Files) Init() (err error) {
	if err = os.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("db: failed to create data directory: %w", err)
	}
	return errors.Join(f.notes.init(), f.documents.init(), f.webClips.init())
}

func (f *Files) NoteList(ctx context.Context) ([]models.Note, error) {
	return f.notes.list()
}

func (f *Files) NoteAdd(ctx context.Context, note models.Note) error {
	return f.notes.add(note)
}

func (f *Files) NoteUpdate(ctx context.Context, id string, update func(n *models.Note)) (models.Note, bool, error) {
	return f.notes.update(id, update)
}

func (f *Files) NoteDelete(ctx context.Context, id string) error {
	_, _, err := f.notes.delete(id)
	return err
}

func (f *Files) DocumentList(ctx context.Context) ([]models.Document, error) {
	return f.documents.list()
}

func (f *Files) DocumentAdd(ctx context.Context, doc models.Document) error {
	return f.documents.add(doc)
}

func (f *Files) DocumentDelete(ctx context.Context, id string) (models.Document, bool, error) {
	return f.documents.delete(id)
}

func (f *Files) WebClipList(ctx context.Context) ([]models.WebClip, error) {
	return f.webClips.list()
}

func (f *Files) WebClipAdd(ctx context.Context, clip models.WebClip) error {
	return f.webClips.add(clip)
}

func (f *Files) WebClipDelete(ctx context.Context, id string) error {
	_, _, err := f.webClips.delete(id)
	return err
}

func newCollection[T any](name string, id func(T) string) *collection[T] {
	return &collection[T]{
		name: name,
		id:   id,
	}
}

// collection is a JSON array file. The mutex serializes read-modify-write cycles.
type collection[T any] struct {
	name string
	id   func(T) string
	m    sync.Mutex
}

func (c *collection[T]) init() error {
	c.m.Lock()
	defer c.m.Unlock()
	_, err := os.Stat(c.name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("db: failed to stat %s: %w", c.name, err)
	}
	return c.write([]T{})
}

func (c *collection[T]) list() ([]T, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.read()
}

func (c *collection[T]) add(item T) error {
	c.m.Lock()
	defer c.m.Unlock()
	items, err := c.read()
	if err != nil {
		return err
	}
	return c.write(append(items, item))
}

func (c *collection[T]) update(id string, f func(item *T)) (updated T, ok bool, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	items, err := c.read()
	if err != nil {
		return updated, false, err
	}
	i := slices.IndexFunc(items, func(item T) bool { return c.id(item) == id })
	if i < 0 {
		return updated, false, nil
	}
	f(&items[i])
	if err = c.write(items); err != nil {
		return updated, false, err
	}
	return items[i], true, nil
}

// delete rewrites the collection without the item. When the id is missing the file is left alone.
func (c *collection[T]) delete(id string) (deleted T, ok bool, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	items, err := c.read()
	if err != nil {
		return deleted, false, err
	}
	i := slices.IndexFunc(items, func(item T) bool { return c.id(item) == id })
	if i < 0 {
		return deleted, false, nil
	}
	deleted = items[i]
	items = slices.DeleteFunc(items, func(item T) bool { return c.id(item) == id })
	if err = c.write(items); err != nil {
		return deleted, false, err
	}
	return deleted, true, nil
}

// read returns an empty list if the file doesn't exist yet.
func (c *collection[T]) read() (items []T, err error) {
	data, err := os.ReadFile(c.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("db: failed to read %s: %w", c.name, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}
	if err = json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) write(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("db: failed to encode %s: %w", c.name, err)
	}
	if err = writeFileAtomic(c.name, data, 0644); err != nil {
		return fmt.Errorf("db: failed to write %s: %w", c.name, err)
	}
	return nil
}
