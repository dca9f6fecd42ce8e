package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) models.ClipContent
}

func New(log *slog.Logger, store db.Store, fetcher Fetcher) Handler {
	return Handler{
		log:     log,
		store:   store,
		fetcher: fetcher,
	}
}

type Handler struct {
	log     *slog.Logger
	store   db.Store
	fetcher Fetcher
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.WebClipsPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		respond.WithError(w, "URL is required", http.StatusBadRequest)
		return
	}

	content := h.fetcher.Fetch(r.Context(), req.URL)

	clip := models.WebClip{
		ID:        uuid.NewString(),
		URL:       req.URL,
		Title:     content.Title,
		Content:   content.Content,
		Tags:      req.Tags,
		ClippedAt: time.Now().UTC(),
	}
	if clip.Tags == nil {
		clip.Tags = []string{}
	}
	if err = h.store.WebClipAdd(r.Context(), clip); err != nil {
		h.log.Error("failed to add web clip", slog.Any("error", err))
		respond.WithError(w, "failed to add web clip", http.StatusInternalServerError)
		return
	}
	h.log.Info("web clip created", slog.String("id", clip.ID), slog.String("url", clip.URL))

	respond.WithJSON(w, clip, http.StatusCreated)
}
