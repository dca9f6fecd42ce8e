// Package search matches queries against the knowledge base with case-insensitive substring
// comparisons. Results keep collection order: notes, then documents, then web clips.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/kbserver/models"
)

// Source is the read side of a store.
type Source interface {
	NoteList(ctx context.Context) ([]models.Note, error)
	DocumentList(ctx context.Context) ([]models.Document, error)
	WebClipList(ctx context.Context) ([]models.WebClip, error)
}

// Corpus is everything that can be searched.
type Corpus struct {
	Notes     []models.Note
	Documents []models.Document
	WebClips  []models.WebClip
}

func Load(ctx context.Context, s Source) (c Corpus, err error) {
	if c.Notes, err = s.NoteList(ctx); err != nil {
		return c, fmt.Errorf("failed to list notes: %w", err)
	}
	if c.Documents, err = s.DocumentList(ctx); err != nil {
		return c, fmt.Errorf("failed to list documents: %w", err)
	}
	if c.WebClips, err = s.WebClipList(ctx); err != nil {
		return c, fmt.Errorf("failed to list web clips: %w", err)
	}
	return c, nil
}

// Find returns every record where the query is a substring of a title, body, name, URL or tag.
func (c Corpus) Find(query string) (results []models.SearchResult) {
	q := strings.ToLower(query)
	results = []models.SearchResult{}
	for _, n := range c.Notes {
		if contains(q, n.Title, n.Content) || contains(q, n.Tags...) {
			results = append(results, models.SearchResult{Type: models.ResultTypeNote, Data: n})
		}
	}
	for _, d := range c.Documents {
		if contains(q, d.OriginalName, d.TextContent) || contains(q, d.Tags...) {
			results = append(results, models.SearchResult{Type: models.ResultTypeDocument, Data: d})
		}
	}
	for _, wc := range c.WebClips {
		if contains(q, wc.Title, wc.Content, wc.URL) || contains(q, wc.Tags...) {
			results = append(results, models.SearchResult{Type: models.ResultTypeWebClip, Data: wc})
		}
	}
	return results
}

// Relevant returns every record whose body contains any word of the question.
func (c Corpus) Relevant(question string) (results []models.SearchResult) {
	words := strings.Fields(strings.ToLower(question))
	results = []models.SearchResult{}
	for _, n := range c.Notes {
		if anyWord(words, n.Content) {
			results = append(results, models.SearchResult{Type: models.ResultTypeNote, Data: n})
		}
	}
	for _, d := range c.Documents {
		if anyWord(words, d.TextContent) {
			results = append(results, models.SearchResult{Type: models.ResultTypeDocument, Data: d})
		}
	}
	for _, wc := range c.WebClips {
		if anyWord(words, wc.Content) {
			results = append(results, models.SearchResult{Type: models.ResultTypeWebClip, Data: wc})
		}
	}
	return results
}

// contains expects q to be lower case already.
func contains(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func anyWord(words []string, s string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
