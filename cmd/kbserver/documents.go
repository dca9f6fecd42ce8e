package main

import (
	"context"
	"fmt"
	"os"

	"github.com/a-h/kbserver/client"
)

type DocumentsCommand struct {
	List   DocumentsListCommand   `cmd:"list" help:"List uploaded documents."`
	Upload DocumentsUploadCommand `cmd:"upload" help:"Upload a PDF, Word or text document."`
	Delete DocumentsDeleteCommand `cmd:"delete" help:"Delete a document and its uploaded file."`
}

type DocumentsListCommand struct {
	ClientFlags `embed:""`
}

func (c DocumentsListCommand) Run(ctx context.Context) (err error) {
	docs, err := client.New(c.ServerURL, c.ServerAPIKey).DocumentsGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	return printJSON(docs)
}

type DocumentsUploadCommand struct {
	ClientFlags `embed:""`
	File        string   `arg:"" help:"The file to upload." type:"existingfile"`
	Tags        []string `help:"Tags to apply to the document." sep:","`
}

func (c DocumentsUploadCommand) Run(ctx context.Context) (err error) {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	doc, err := client.New(c.ServerURL, c.ServerAPIKey).DocumentsPost(ctx, c.File, f, c.Tags)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}
	return printJSON(doc)
}

type DocumentsDeleteCommand struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"The ID of the document to delete."`
}

func (c DocumentsDeleteCommand) Run(ctx context.Context) (err error) {
	resp, err := client.New(c.ServerURL, c.ServerAPIKey).DocumentsDelete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return printJSON(resp)
}
