package search

import (
	"fmt"
	"strings"

	"github.com/a-h/kbserver/models"
)

const (
	// MaxSources is the number of relevant records included in an answer.
	MaxSources = 3
	// PreviewLength is the number of characters of note content shown in an answer.
	PreviewLength = 100
)

// Top returns the first MaxSources results.
func Top(results []models.SearchResult) []models.SearchResult {
	if len(results) > MaxSources {
		return results[:MaxSources]
	}
	return results
}

// Answer describes the relevant records found for a question.
func Answer(question string, relevant []models.SearchResult) string {
	if len(relevant) == 0 {
		return fmt.Sprintf("I couldn't find any information related to your question: '%s'. Try adding more notes, documents, or web clips on this topic.", question)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "I found %d items relevant to your question: '%s'.\n\n", len(relevant), question)
	for i, r := range Top(relevant) {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, Describe(r))
	}
	return sb.String()
}

// Describe returns a single line summary of a result.
func Describe(r models.SearchResult) string {
	switch d := r.Data.(type) {
	case models.Note:
		return fmt.Sprintf("Note: %s - %s", d.Title, Preview(d.Content, PreviewLength))
	case models.Document:
		return fmt.Sprintf("Document: %s", d.OriginalName)
	case models.WebClip:
		return fmt.Sprintf("Web Clip: %s (%s)", d.Title, d.URL)
	}
	return string(r.Type)
}

// Preview returns the first n characters of s, followed by an ellipsis if s is longer.
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
