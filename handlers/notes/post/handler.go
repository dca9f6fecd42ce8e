package post

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

func New(log *slog.Logger, store db.Store) Handler {
	return Handler{
		log:   log,
		store: store,
	}
}

type Handler struct {
	log   *slog.Logger
	store db.Store
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.NotesPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.NewString(),
		Title:     models.DefaultNoteTitle,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Title != nil {
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = req.Tags
	}

	if err = h.store.NoteAdd(r.Context(), note); err != nil {
		h.log.Error("failed to add note", slog.Any("error", err))
		respond.WithError(w, "failed to add note", http.StatusInternalServerError)
		return
	}
	h.log.Info("note created", slog.String("id", note.ID))

	respond.WithJSON(w, note, http.StatusCreated)
}
