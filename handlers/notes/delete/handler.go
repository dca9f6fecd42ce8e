package delete

import (
	"log/slog"
	"net/http"

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

// ServeHTTP succeeds even if the note doesn't exist.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.NoteDelete(r.Context(), id); err != nil {
		h.log.Error("failed to delete note", slog.String("id", id), slog.Any("error", err))
		respond.WithError(w, "failed to delete note", http.StatusInternalServerError)
		return
	}
	respond.WithJSON(w, models.MessageResponse{Message: "Note deleted"}, http.StatusOK)
}
