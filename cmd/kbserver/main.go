package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Serve     ServeCommand     `cmd:"serve" help:"Start the knowledge base server."`
	Notes     NotesCommand     `cmd:"notes" help:"Manage notes."`
	Documents DocumentsCommand `cmd:"documents" help:"Manage uploaded documents."`
	Clips     ClipsCommand     `cmd:"clips" help:"Manage web clips."`
	Search    SearchCommand    `cmd:"search" help:"Search notes, documents and web clips."`
	Ask       AskCommand       `cmd:"ask" help:"Ask the knowledge base a question."`
	Import    ImportCommand    `cmd:"import" help:"Import Pocketbase records as notes."`
	Version   VersionCommand   `cmd:"version" help:"Print the version of the knowledge base server."`
}

func main() {
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}

// ClientFlags are shared by the commands that talk to a running server.
type ClientFlags struct {
	ServerURL    string `help:"The URL of the knowledge base server." env:"KB_SERVER_URL" default:"http://localhost:9020"`
	ServerAPIKey string `help:"The API key for the knowledge base server." env:"KB_SERVER_API_KEY" default:""`
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
