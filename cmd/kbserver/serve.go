package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/kbserver"
	"github.com/a-h/kbserver/accesslog"
	"github.com/a-h/kbserver/auth"
	"github.com/a-h/kbserver/clip"
	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/extract"
	documentsdelete "github.com/a-h/kbserver/handlers/documents/delete"
	documentsget "github.com/a-h/kbserver/handlers/documents/get"
	documentspost "github.com/a-h/kbserver/handlers/documents/post"
	notesdelete "github.com/a-h/kbserver/handlers/notes/delete"
	notesget "github.com/a-h/kbserver/handlers/notes/get"
	notespost "github.com/a-h/kbserver/handlers/notes/post"
	notesput "github.com/a-h/kbserver/handlers/notes/put"
	"github.com/a-h/kbserver/handlers/pages"
	querypost "github.com/a-h/kbserver/handlers/query/post"
	searchget "github.com/a-h/kbserver/handlers/search/get"
	webclipsdelete "github.com/a-h/kbserver/handlers/webclips/delete"
	webclipsget "github.com/a-h/kbserver/handlers/webclips/get"
	webclipspost "github.com/a-h/kbserver/handlers/webclips/post"
	"github.com/a-h/kbserver/limit"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/llms/ollama"
)

type ServeCommand struct {
	ListenAddr    string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:9020"`
	DataDir       string        `help:"The directory holding the JSON collection files." env:"DATA_DIR" default:"data"`
	UploadDir     string        `help:"The directory uploaded documents are written to." env:"UPLOAD_DIR" default:"uploads"`
	MaxUploadSize int64         `help:"The maximum size of an API request body in bytes." env:"MAX_UPLOAD_SIZE" default:"16777216"`
	Store         string        `help:"The store to use." env:"STORE" enum:"file,rqlite" default:"file"`
	RqliteURL     string        `help:"The URL of the rqlite server, used when the store is rqlite." env:"RQLITE_URL" default:"http://localhost:4001"`
	ClipTimeout   time.Duration `help:"The timeout for fetching web pages to clip." env:"CLIP_TIMEOUT" default:"10s"`
	OllamaURL     string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	ChatModel     string        `help:"The model used to write answers. Answers are templated if empty." env:"CHAT_MODEL" default:""`
	SystemPrompt  string        `help:"A file containing the system prompt to use." env:"SYSTEM_PROMPT" default:""`
	UserPrompt    string        `help:"A file containing the user prompt to use." env:"USER_PROMPT" default:""`
	APIKeysFile   string        `help:"The file containing a JSON map of API keys to usernames. API routes are open if empty." env:"API_KEYS_FILE" default:""`
	TLSCertFile   string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile    string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel      string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

const systemPrompt = `You are a trusted advisor that answers questions from a personal knowledge base of notes, documents and web clips. You always use the context to answer the question. If you don't know the answer, you say that you don't know, and don't try to make up an answer.

You respect the user's time and don't provide unnecessary information. You are succinct and to the point.`

const userPrompt = `Here is the context you need to answer the question:

%s

Please provide a succint response to: %s`

func readFileOrDefault(filename, defaultContent string) (string, error) {
	if filename == "" {
		return defaultContent, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(contents), nil
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel)

	store, closeStore, err := c.openStore(log)
	if err != nil {
		return err
	}
	defer closeStore()

	if err = os.MkdirAll(c.UploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	llm, err := c.createLLM(log)
	if err != nil {
		return err
	}
	systemPrompt, err := readFileOrDefault(c.SystemPrompt, systemPrompt)
	if err != nil {
		return fmt.Errorf("failed to read system prompt: %w", err)
	}
	userPrompt, err := readFileOrDefault(c.UserPrompt, userPrompt)
	if err != nil {
		return fmt.Errorf("failed to read user prompt: %w", err)
	}
	pf := func(q, context string) (string, error) {
		return fmt.Sprintf(userPrompt, context, q), nil
	}

	extractor := extract.New(log)
	fetcher := clip.New(log, c.ClipTimeout)

	api := http.NewServeMux()
	api.Handle("GET /api/notes", notesget.New(log, store))
	api.Handle("POST /api/notes", notespost.New(log, store))
	api.Handle("PUT /api/notes/{id}", notesput.New(log, store))
	api.Handle("DELETE /api/notes/{id}", notesdelete.New(log, store))
	api.Handle("GET /api/documents", documentsget.New(log, store))
	api.Handle("POST /api/documents", documentspost.New(log, store, extractor, c.UploadDir, c.MaxUploadSize))
	api.Handle("DELETE /api/documents/{id}", documentsdelete.New(log, store, c.UploadDir))
	api.Handle("GET /api/web_clips", webclipsget.New(log, store))
	api.Handle("POST /api/web_clips", webclipspost.New(log, store, fetcher))
	api.Handle("DELETE /api/web_clips/{id}", webclipsdelete.New(log, store))
	api.Handle("GET /api/search", searchget.New(log, store))
	api.Handle("POST /api/ai_query", querypost.New(log, store, llm, systemPrompt, pf))

	var apiHandler http.Handler = limit.New(log, c.MaxUploadSize, api)
	if c.APIKeysFile != "" {
		apiKeyToUserName, err := auth.LoadFromFile(c.APIKeysFile)
		if err != nil {
			return fmt.Errorf("failed to load API keys: %w", err)
		}
		log.Info("API key authentication enabled", slog.Int("keys", len(apiKeyToUserName)))
		apiHandler = auth.New(log, apiKeyToUserName, apiHandler)
	}

	ph, err := pages.New(log, kbserver.Version)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("GET /static/uploads/", http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(c.UploadDir))))
	mux.Handle("GET /{$}", ph)
	mux.Handle("GET /{page}", ph)

	withCORSMux := cors.AllowAll().Handler(mux)

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: accesslog.New(log, withCORSMux),
	}
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		return s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	}
	return s.ListenAndServe()
}

func (c ServeCommand) openStore(log *slog.Logger) (store db.Store, closeStore func(), err error) {
	switch c.Store {
	case "rqlite":
		log.Info("connecting to database", slog.String("url", c.RqliteURL))
		conn, err := db.Open(c.RqliteURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db.New(conn), conn.Close, nil
	default:
		log.Info("using JSON file store", slog.String("dir", c.DataDir))
		files := db.NewFiles(c.DataDir)
		if err = files.Init(); err != nil {
			return nil, nil, fmt.Errorf("failed to initialise data directory: %w", err)
		}
		return files, func() {}, nil
	}
}

func (c ServeCommand) createLLM(log *slog.Logger) (llm querypost.Generator, err error) {
	if c.ChatModel == "" {
		return nil, nil
	}
	log.Info("creating LLM client", slog.String("model", c.ChatModel), slog.String("url", c.OllamaURL))
	llmc, err := ollama.New(
		ollama.WithModel(c.ChatModel),
		ollama.WithHTTPClient(&http.Client{}),
		ollama.WithServerURL(c.OllamaURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}
	return llmc, nil
}
