package main

import (
	"context"
	"fmt"

	"github.com/a-h/kbserver/client"
	"github.com/a-h/kbserver/models"
)

type ClipsCommand struct {
	List   ClipsListCommand   `cmd:"list" help:"List web clips."`
	Add    ClipsAddCommand    `cmd:"add" help:"Clip a web page."`
	Delete ClipsDeleteCommand `cmd:"delete" help:"Delete a web clip."`
}

type ClipsListCommand struct {
	ClientFlags `embed:""`
}

func (c ClipsListCommand) Run(ctx context.Context) (err error) {
	clips, err := client.New(c.ServerURL, c.ServerAPIKey).WebClipsGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to list web clips: %w", err)
	}
	return printJSON(clips)
}

type ClipsAddCommand struct {
	ClientFlags `embed:""`
	URL         string   `arg:"" help:"The URL of the page to clip."`
	Tags        []string `help:"Tags to apply to the clip." sep:","`
}

func (c ClipsAddCommand) Run(ctx context.Context) (err error) {
	clip, err := client.New(c.ServerURL, c.ServerAPIKey).WebClipsPost(ctx, models.WebClipsPostRequest{
		URL:  c.URL,
		Tags: c.Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to clip web page: %w", err)
	}
	return printJSON(clip)
}

type ClipsDeleteCommand struct {
	ClientFlags `embed:""`
	ID          string `arg:"" help:"The ID of the web clip to delete."`
}

func (c ClipsDeleteCommand) Run(ctx context.Context) (err error) {
	resp, err := client.New(c.ServerURL, c.ServerAPIKey).WebClipsDelete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to delete web clip: %w", err)
	}
	return printJSON(resp)
}
