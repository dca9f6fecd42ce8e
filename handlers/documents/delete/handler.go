package delete

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/models"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, store db.Store, uploadDir string) Handler {
	return Handler{
		log:       log,
		store:     store,
		uploadDir: uploadDir,
	}
}

type Handler struct {
	log       *slog.Logger
	store     db.Store
	uploadDir string
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok, err := h.store.DocumentDelete(r.Context(), id)
	if err != nil {
		h.log.Error("failed to delete document", slog.String("id", id), slog.Any("error", err))
		respond.WithError(w, "failed to delete document", http.StatusInternalServerError)
		return
	}
	if !ok {
		respond.WithError(w, "Document not found", http.StatusNotFound)
		return
	}

	path := filepath.Join(h.uploadDir, filepath.Base(doc.Filename))
	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		// The record is gone, so the upload is just an orphan.
		h.log.Error("failed to remove upload", slog.String("path", path), slog.Any("error", err))
	}

	respond.WithJSON(w, models.MessageResponse{Message: "Document deleted"}, http.StatusOK)
}
