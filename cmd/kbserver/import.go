package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/a-h/kbserver/client"
	"github.com/a-h/kbserver/extract"
	"github.com/a-h/kbserver/models"
	"github.com/pluja/pocketbase"
	"gopkg.in/yaml.v3"
)

type ImportCommand struct {
	ClientFlags   `embed:""`
	PocketbaseURL string   `help:"The URL of the Pocketbase server." env:"POCKETBASE_URL" default:"http://localhost:8080"`
	ID            string   `help:"The ID of the record to import if you just want to import a single record." env:"ID" default:""`
	Collection    string   `help:"The name of the collection to export from." env:"COLLECTION" default:"entities"`
	Expand        string   `help:"The fields to expand." env:"EXPAND" default:""`
	Files         string   `help:"Comma separated list of fields that contain Pocketbase file references." env:"FILES" default:""`
	Tags          []string `help:"Tags to add to every imported note." env:"TAGS" sep:","`
	DryRun        bool     `help:"Do not actually import the notes." env:"DRY_RUN" default:"false"`
	LogLevel      string   `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ImportCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	kbc := client.New(c.ServerURL, c.ServerAPIKey)

	pbe := NewPocketbaseExporter(log, c.PocketbaseURL, pocketbase.NewClient(c.PocketbaseURL), c.Collection, c.Expand, c.Files)
	for record := range pbe.Export(ctx) {
		if c.ID != "" && record.ID != c.ID {
			continue
		}
		record.Note.Tags = append(record.Note.Tags, c.Tags...)
		log.Info("importing record", slog.String("id", record.ID), slog.String("title", *record.Note.Title))
		if log.Enabled(ctx, slog.LevelDebug) {
			fmt.Println(*record.Note.Content)
		}
		if c.DryRun {
			log.Info("skipping note import in dry run mode", slog.String("id", record.ID))
			continue
		}
		note, err := kbc.NotesPost(ctx, record.Note)
		if err != nil {
			return fmt.Errorf("failed to post note: %w", err)
		}
		log.Info("note imported", slog.String("id", record.ID), slog.String("noteID", note.ID))
	}
	return pbe.Error
}

func NewPocketbaseExporter(log *slog.Logger, baseURL string, client *pocketbase.Client, collection, expand, files string) *PocketbaseExporter {
	return &PocketbaseExporter{
		log:        log,
		baseURL:    baseURL,
		client:     client,
		collection: collection,
		expand:     expand,
		files:      strings.Split(files, ","),
		PageSize:   10,
		Error:      nil,
	}
}

type PocketbaseExporter struct {
	log *slog.Logger
	// baseURL for downloading files, e.g. http://localhost:8090
	baseURL    string
	client     *pocketbase.Client
	collection string
	expand     string
	files      []string
	PageSize   int
	Error      error
}

func (p *PocketbaseExporter) Export(ctx context.Context) iter.Seq[ExportedNote] {
	var page int
	return func(yield func(ExportedNote) bool) {
		for {
			if ctx.Err() != nil {
				return
			}
			if p.Error != nil {
				return
			}
			page++
			response, err := p.client.List(p.collection, pocketbase.ParamsList{
				Page:   page,
				Size:   p.PageSize,
				Sort:   "-created",
				Expand: p.expand,
			})
			if err != nil {
				p.Error = err
				return
			}
			if len(response.Items) == 0 {
				return
			}
			for _, item := range response.Items {
				if !yield(p.createNote(ctx, item)) {
					return
				}
			}
		}
	}
}

func useItemOrDefault(item map[string]any, keys []string, defaultValue string) string {
	for _, key := range keys {
		if value, ok := item[key].(string); ok && value != "" {
			return value
		}
	}
	return defaultValue
}

// itemTags returns the string values of the tags field, if present.
func itemTags(item map[string]any) (tags []string) {
	switch v := item["tags"].(type) {
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}

type ExportedNote struct {
	ID   string
	Note models.NotesPostRequest
}

func (p *PocketbaseExporter) createNote(ctx context.Context, item map[string]any) (en ExportedNote) {
	en.ID, _ = item["id"].(string)
	source := useItemOrDefault(item, []string{"url"}, fmt.Sprintf("%s/%s", url.PathEscape(p.collection), url.PathEscape(en.ID)))
	title := useItemOrDefault(item, []string{"title", "name"}, models.DefaultNoteTitle)
	en.Note.Title = &title
	en.Note.Tags = append(itemTags(item), p.collection)
	slices.Sort(en.Note.Tags)
	en.Note.Tags = slices.Compact(en.Note.Tags)

	recursivelyApplyExpandedFields(item)
	recursivelyRemoveKeys(item, []string{"id", "collectionId", "collectionName", "created", "updated"})

	sb := new(strings.Builder)
	fmt.Fprintf(sb, "Source: %s\n\n", source)
	_ = yaml.NewEncoder(sb).Encode(item)

	for _, fileFieldName := range p.files {
		if ctx.Err() != nil {
			return
		}
		fileNames, fileNamesFieldExists := item[fileFieldName].([]any)
		if !fileNamesFieldExists || len(fileNames) == 0 {
			continue
		}
		for _, fileName := range fileNames {
			fileName, ok := fileName.(string)
			if !ok {
				p.Error = fmt.Errorf("file name is not a string")
				continue
			}
			if !extract.Supported(fileName) {
				continue
			}
			fileText, err := p.getFileText(ctx, p.collection, en.ID, fileName)
			if err != nil {
				p.Error = fmt.Errorf("failed to get file text: %w", err)
				continue
			}
			sb.WriteString("\n")
			sb.WriteString(fileText)
		}
	}

	content := sb.String()
	en.Note.Content = &content
	return
}

// getFileText downloads a Pocketbase file to a temporary file and extracts its text.
func (p *PocketbaseExporter) getFileText(ctx context.Context, collection, id, filename string) (string, error) {
	downloadURL, err := createURL(p.baseURL, "api", "files", collection, id, filename)
	if err != nil {
		return "", fmt.Errorf("failed to create download URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: unexpected status %d", resp.StatusCode)
	}

	// Keep the extension so that the extractor can pick a format.
	f, err := os.CreateTemp("", "kb-import-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(f.Name())
	_, err = io.Copy(f, resp.Body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return extract.New(p.log).File(ctx, f.Name()), nil
}

func createURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse baseURL: %w", err)
	}
	u.Path = strings.Join(pathSegments, "/")
	return u.String(), nil
}

func applyExpandedFields(data map[string]any) (changed bool) {
	for key, value := range data {
		if key == "expand" {
			expandMap, ok := value.(map[string]any)
			if !ok {
				continue
			}

			// Check parent keys for matches in expand.
			for parentKey := range data {
				if parentKey == "expand" {
					continue
				}
				if expandedValue, found := expandMap[parentKey]; found {
					data[parentKey] = expandedValue
					changed = true
				}
			}

			delete(data, "expand")
			changed = true
		} else if nestedMap, ok := value.(map[string]any); ok {
			if applyExpandedFields(nestedMap) {
				changed = true
			}
		} else if nestedSlice, ok := value.([]any); ok {
			for _, item := range nestedSlice {
				if itemMap, isMap := item.(map[string]any); isMap {
					if applyExpandedFields(itemMap) {
						changed = true
					}
				}
			}
		}
	}

	return changed
}

func recursivelyApplyExpandedFields(data map[string]any) {
	for {
		if changesMade := applyExpandedFields(data); !changesMade {
			return
		}
	}
}

func recursivelyRemoveKeys(item any, keys []string) {
	switch item := item.(type) {
	case map[string]any:
		for _, key := range keys {
			delete(item, key)
		}
		var emptyKeys []string
		for k, v := range item {
			switch v := v.(type) {
			case map[string]any:
				if len(v) == 0 {
					emptyKeys = append(emptyKeys, k)
				}
			case []any:
				if len(v) == 0 {
					emptyKeys = append(emptyKeys, k)
				}
			case string:
				if v == "" {
					emptyKeys = append(emptyKeys, k)
				}
			}
			recursivelyRemoveKeys(v, keys)
		}
		for _, key := range emptyKeys {
			delete(item, key)
		}
	case []any:
		for _, value := range item {
			recursivelyRemoveKeys(value, keys)
		}
	}
}
