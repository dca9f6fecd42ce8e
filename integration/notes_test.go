package integration

import (
	"context"
	"slices"
	"testing"

	"github.com/a-h/kbserver/client"
	"github.com/a-h/kbserver/models"
)

const (
	serverURL = "http://localhost:9020"
	apiKey    = "test-api-key"
)

func ptr[T any](v T) *T { return &v }

func TestNotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()
	c := client.New(serverURL, apiKey)

	note, err := c.NotesPost(ctx, models.NotesPostRequest{
		Title:   ptr("Integration note"),
		Content: ptr("This note is created by the integration tests."),
		Tags:    []string{"integration"},
	})
	if err != nil {
		t.Fatalf("failed to post note: %v", err)
	}
	defer c.NotesDelete(ctx, note.ID)

	notes, err := c.NotesGet(ctx)
	if err != nil {
		t.Fatalf("failed to get notes: %v", err)
	}
	if !slices.ContainsFunc(notes, func(n models.Note) bool { return n.ID == note.ID }) {
		t.Errorf("expected note %q to be listed", note.ID)
	}

	results, err := c.Search(ctx, "integration")
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(results) == 0 {
		t.Error("expected search results")
	}

	updated, err := c.NotesPut(ctx, note.ID, models.NotesPutRequest{Content: ptr("Updated.")})
	if err != nil {
		t.Fatalf("failed to put note: %v", err)
	}
	if updated.Content != "Updated." || updated.Title != "Integration note" {
		t.Errorf("unexpected updated note: %+v", updated)
	}
}
