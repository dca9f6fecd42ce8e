package get

import (
	"log/slog"
	"net/http"

	"github.com/a-h/kbserver/db"
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
	notes, err := h.store.NoteList(r.Context())
	if err != nil {
		h.log.Error("failed to list notes", slog.Any("error", err))
		respond.WithError(w, "failed to list notes", http.StatusInternalServerError)
		return
	}
	respond.WithJSON(w, notes, http.StatusOK)
}
