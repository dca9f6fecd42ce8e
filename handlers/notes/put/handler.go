package put

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/models"
	"github.com/a-h/respond"
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
	id := r.PathValue("id")

	var req models.NotesPutRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Error("failed to decode body", slog.Any("error", err))
		respond.WithError(w, "failed to decode body", http.StatusBadRequest)
		return
	}

	note, ok, err := h.store.NoteUpdate(r.Context(), id, func(n *models.Note) {
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		if req.Tags != nil {
			n.Tags = *req.Tags
		}
		if n.Tags == nil {
			n.Tags = []string{}
		}
		n.UpdatedAt = time.Now().UTC()
	})
	if err != nil {
		h.log.Error("failed to update note", slog.String("id", id), slog.Any("error", err))
		respond.WithError(w, "failed to update note", http.StatusInternalServerError)
		return
	}
	if !ok {
		respond.WithError(w, "Note not found", http.StatusNotFound)
		return
	}

	respond.WithJSON(w, note, http.StatusOK)
}
