package main

import (
	"context"
	"fmt"

	"github.com/a-h/kbserver/client"
	"github.com/a-h/kbserver/models"
)

type NotesCommand struct {
	List   NotesListCommand   `cmd:"list" help:"List notes."`
	Add    NotesAddCommand    `cmd:"add" help:"Add a note."`
	Update NotesUpdateCommand `cmd:"update" help:"Update a note."`
	Delete NotesDeleteCommand `cmd:"delete" help:"Delete a note."`
}

type NotesListCommand struct {
	ClientFlags `embed:""`
}

func (c NotesListCommand) Run(ctx context.Context) (err error) {
	notes, err := client.New(c.ServerURL, c.ServerAPIKey).NotesGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	return printJSON(notes)
}

type NotesAddCommand struct {
	ClientFlags `embed:""`
	Title       string   `help:"The title of the note." default:"Untitled Note"`
	Content     string   `arg:"" help:"The content of the note."`
	Tags        []string `help:"Tags to apply to the note." sep:","`
}

func (c NotesAddCommand) Run(ctx context.Context) (err error) {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	note, err := client.New(c.ServerURL, c.ServerAPIKey).NotesPost(ctx, models.NotesPostRequest{
		Title:   &c.Title,
		Content: &c.Content,
		Tags:    tags,
	})
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}
	return printJSON(note)
}

type NotesUpdateCommand struct {
	ClientFlags `embed:""`
	ID          string   `arg:"" help:"The ID of the note to update."`
	Title       *string  `help:"The new title of the note."`
	Content     *string  `help:"The new content of the note."`
	Tags        []string `help:"Replace the tags of the note." sep:","`
}

func (c NotesUpdateCommand) Run(ctx context.Context) (err error) {
	req := models.NotesPutRequest{
		Title:   c.Title,
		Content: c.Content,
	}
	if c.Tags != nil {
		req.Tags = &c.Tags
	}
	note, err := client.New(c.ServerURL, c.ServerAPIKey).NotesPut(ctx, c.ID, req)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return printJSON(note)
}

type NotesDeleteCommand struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"The ID of the note to delete."`
}

func (c NotesDeleteCommand) Run(ctx context.Context) (err error) {
	resp, err := client.New(c.ServerURL, c.ServerAPIKey).NotesDelete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return printJSON(resp)
}
