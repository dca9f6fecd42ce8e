package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/kbserver/models"
	"github.com/a-h/kbserver/search"
	"github.com/a-h/respond"
	"github.com/tmc/langchaingo/llms"
)

// Generator is satisfied by langchaingo chat models.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// New creates the question handler. If llm is nil, answers are built from a template.
func New(log *slog.Logger, source search.Source, llm Generator, systemPrompt string, userPrompt func(question string, context string) (string, error)) Handler {
	return Handler{
		log:          log,
		source:       source,
		llm:          llm,
		systemPrompt: systemPrompt,
		userPrompt:   userPrompt,
	}
}

type Handler struct {
	log          *slog.Logger
	source       search.Source
	llm          Generator
	systemPrompt string
	userPrompt   func(question string, context string) (string, error)
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.QueryPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		respond.WithError(w, "Question is required", http.StatusBadRequest)
		return
	}

	corpus, err := search.Load(r.Context(), h.source)
	if err != nil {
		h.log.Error("failed to load corpus", slog.Any("error", err))
		respond.WithError(w, "failed to load knowledge base", http.StatusInternalServerError)
		return
	}

	relevant := corpus.Relevant(req.Question)
	resp := models.QueryPostResponse{
		Question: req.Question,
		Response: search.Answer(req.Question, relevant),
		Sources:  search.Top(relevant),
	}

	if h.llm != nil && len(resp.Sources) > 0 {
		generated, err := h.generate(r.Context(), req.Question, resp.Sources)
		if err != nil {
			h.log.Warn("failed to generate answer, using template", slog.Any("error", err))
		} else {
			resp.Response = generated
		}
	}

	respond.WithJSON(w, resp, http.StatusOK)
}

var errNoChoices = errors.New("model returned no choices")

func (h Handler) generate(ctx context.Context, question string, sources []models.SearchResult) (answer string, err error) {
	var sb strings.Builder
	for _, s := range sources {
		sb.WriteString("Context from ")
		sb.WriteString(search.Describe(s))
		sb.WriteString("\n")
		sb.WriteString(body(s))
		sb.WriteString("\n")
	}
	prompt, err := h.userPrompt(question, sb.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate prompt: %w", err)
	}

	res, err := h.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, h.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if res == nil || len(res.Choices) == 0 {
		return "", errNoChoices
	}
	return res.Choices[0].Content, nil
}

func body(r models.SearchResult) string {
	switch d := r.Data.(type) {
	case models.Note:
		return d.Content
	case models.Document:
		return d.TextContent
	case models.WebClip:
		return d.Content
	}
	return ""
}
