package main

import (
	"context"
	"fmt"

	"github.com/a-h/kbserver/client"
)

type SearchCommand struct {
	ClientFlags `embed:""`
	Query       string `arg:"" help:"The text to search for."`
	JSON        bool   `help:"Print the raw results as JSON." default:"false"`
}

func (c SearchCommand) Run(ctx context.Context) (err error) {
	results, err := client.New(c.ServerURL, c.ServerAPIKey).Search(ctx, c.Query)
	if err != nil {
		return fmt.Errorf("failed to search: %w", err)
	}
	if c.JSON {
		return printJSON(results)
	}
	for _, r := range results {
		fmt.Printf("%s\t%s\n", r.Type, r.Title())
	}
	return nil
}
