package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/a-h/kbserver/models"
	"github.com/rqlite/gorqlite"
)

func New(conn *gorqlite.Connection) *Queries {
	return &Queries{
		conn: conn,
	}
}

// Queries stores the collections in rqlite. Insertion order is rowid order.
type Queries struct {
	conn *gorqlite.Connection
}

var _ Store = (*Queries)(nil)

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	return string(b), nil
}

func unmarshalTags(s string) (tags []string, err error) {
	if err = json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func (q *Queries) NoteList(ctx context.Context) (notes []models.Note, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `select id, title, content, tags, created_at, updated_at from note order by rowid`,
	}
	return q.queryNotes(ctx, stmt)
}

func (q *Queries) noteGet(ctx context.Context, id string) (note models.Note, ok bool, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `select id, title, content, tags, created_at, updated_at from note where id = ?`,
		Arguments: []any{id},
	}
	notes, err := q.queryNotes(ctx, stmt)
	if err != nil || len(notes) == 0 {
		return note, false, err
	}
	return notes[0], true, nil
}

func (q *Queries) queryNotes(ctx context.Context, stmt gorqlite.ParameterizedStatement) (notes []models.Note, err error) {
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	notes = []models.Note{}
	for result.Next() {
		var n models.Note
		var tags, createdAt, updatedAt string
		if err = result.Scan(&n.ID, &n.Title, &n.Content, &tags, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if n.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = models.ParseTime(createdAt); err != nil {
			return nil, err
		}
		if n.UpdatedAt, err = models.ParseTime(updatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func (q *Queries) NoteAdd(ctx context.Context, note models.Note) (err error) {
	tags, err := marshalTags(note.Tags)
	if err != nil {
		return err
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `insert into note (id, title, content, tags, created_at, updated_at) values (?, ?, ?, ?, ?, ?)`,
		Arguments: []any{note.ID, note.Title, note.Content, tags, formatTime(note.CreatedAt), formatTime(note.UpdatedAt)},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}

func (q *Queries) NoteUpdate(ctx context.Context, id string, f func(n *models.Note)) (note models.Note, ok bool, err error) {
	note, ok, err = q.noteGet(ctx, id)
	if err != nil || !ok {
		return note, ok, err
	}
	f(&note)
	tags, err := marshalTags(note.Tags)
	if err != nil {
		return note, false, err
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `update note set title = ?, content = ?, tags = ?, updated_at = ? where id = ?`,
		Arguments: []any{note.Title, note.Content, tags, formatTime(note.UpdatedAt), id},
	}
	wr, err := q.conn.WriteOneParameterizedContext(ctx, stmt)
	if err != nil {
		return note, false, err
	}
	// The note was deleted between the read and the write.
	if wr.RowsAffected == 0 {
		return models.Note{}, false, nil
	}
	return note, true, nil
}

func (q *Queries) NoteDelete(ctx context.Context, id string) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `delete from note where id = ?`,
		Arguments: []any{id},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}

const documentColumns = `id, filename, original_name, text_content, tags, uploaded_at`

func (q *Queries) DocumentList(ctx context.Context) (docs []models.Document, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `select ` + documentColumns + ` from document order by rowid`,
	}
	return q.queryDocuments(ctx, stmt)
}

func (q *Queries) queryDocuments(ctx context.Context, stmt gorqlite.ParameterizedStatement) (docs []models.Document, err error) {
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	docs = []models.Document{}
	for result.Next() {
		var d models.Document
		var tags, uploadedAt string
		if err = result.Scan(&d.ID, &d.Filename, &d.OriginalName, &d.TextContent, &tags, &uploadedAt); err != nil {
			return nil, err
		}
		if d.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		if d.UploadedAt, err = models.ParseTime(uploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func (q *Queries) DocumentAdd(ctx context.Context, doc models.Document) (err error) {
	tags, err := marshalTags(doc.Tags)
	if err != nil {
		return err
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `insert into document (` + documentColumns + `) values (?, ?, ?, ?, ?, ?)`,
		Arguments: []any{doc.ID, doc.Filename, doc.OriginalName, doc.TextContent, tags, formatTime(doc.UploadedAt)},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}

func (q *Queries) DocumentDelete(ctx context.Context, id string) (doc models.Document, ok bool, err error) {
	docs, err := q.queryDocuments(ctx, gorqlite.ParameterizedStatement{
		Query:     `select ` + documentColumns + ` from document where id = ?`,
		Arguments: []any{id},
	})
	if err != nil || len(docs) == 0 {
		return doc, false, err
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `delete from document where id = ?`,
		Arguments: []any{id},
	}
	wr, err := q.conn.WriteOneParameterizedContext(ctx, stmt)
	if err != nil {
		return doc, false, err
	}
	if wr.RowsAffected == 0 {
		return doc, false, nil
	}
	return docs[0], true, nil
}

func (q *Queries) WebClipList(ctx context.Context) (clips []models.WebClip, err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query: `select id, url, title, content, tags, clipped_at from web_clip order by rowid`,
	}
	result, err := q.conn.QueryOneParameterizedContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	clips = []models.WebClip{}
	for result.Next() {
		var c models.WebClip
		var tags, clippedAt string
		if err = result.Scan(&c.ID, &c.URL, &c.Title, &c.Content, &tags, &clippedAt); err != nil {
			return nil, err
		}
		if c.Tags, err = unmarshalTags(tags); err != nil {
			return nil, err
		}
		if c.ClippedAt, err = models.ParseTime(clippedAt); err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}

func (q *Queries) WebClipAdd(ctx context.Context, clip models.WebClip) (err error) {
	tags, err := marshalTags(clip.Tags)
	if err != nil {
		return err
	}
	stmt := gorqlite.ParameterizedStatement{
		Query:     `insert into web_clip (id, url, title, content, tags, clipped_at) values (?, ?, ?, ?, ?, ?)`,
		Arguments: []any{clip.ID, clip.URL, clip.Title, clip.Content, tags, formatTime(clip.ClippedAt)},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}

func (q *Queries) WebClipDelete(ctx context.Context, id string) (err error) {
	stmt := gorqlite.ParameterizedStatement{
		Query:     `delete from web_clip where id = ?`,
		Arguments: []any{id},
	}
	_, err = q.conn.WriteOneParameterizedContext(ctx, stmt)
	return err
}
