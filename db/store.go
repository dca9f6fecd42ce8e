package db

import (
	"context"
	"errors"

	"github.com/a-h/kbserver/models"
)

// ErrCorrupt is returned when a collection can't be decoded.
var ErrCorrupt = errors.New("db: corrupt collection")

// Store is implemented by the JSON file store and the rqlite store.
// List operations return records in insertion order.
type Store interface {
	NoteList(ctx context.Context) (notes []models.Note, err error)
	NoteAdd(ctx context.Context, note models.Note) (err error)
	// NoteUpdate applies f to the note with the given id and saves it.
	NoteUpdate(ctx context.Context, id string, f func(n *models.Note)) (note models.Note, ok bool, err error)
	NoteDelete(ctx context.Context, id string) (err error)

	DocumentList(ctx context.Context) (docs []models.Document, err error)
	DocumentAdd(ctx context.Context, doc models.Document) (err error)
	// DocumentDelete returns the removed document, so that the caller can remove the upload.
	DocumentDelete(ctx context.Context, id string) (doc models.Document, ok bool, err error)

	WebClipList(ctx context.Context) (clips []models.WebClip, err error)
	WebClipAdd(ctx context.Context, clip models.WebClip) (err error)
	WebClipDelete(ctx context.Context, id string) (err error)
}
