package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/extract"
	"github.com/a-h/kbserver/models"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

// DefaultMaxUploadSize is the largest request body accepted.
const DefaultMaxUploadSize = 16 * 1024 * 1024

// Form parts larger than this are buffered on disk.
const multipartMemory = 1024 * 1024

type Extractor interface {
	File(ctx context.Context, path string) string
}

func New(log *slog.Logger, store db.Store, extractor Extractor, uploadDir string, maxUploadSize int64) Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return Handler{
		log:           log,
		store:         store,
		extractor:     extractor,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
	}
}

type Handler struct {
	log           *slog.Logger
	store         db.Store
	extractor     Extractor
	uploadDir     string
	maxUploadSize int64
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			respond.WithError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn("failed to parse multipart form", slog.Any("error", err))
		respond.WithError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A file input submitted without a selection arrives as an empty value.
		if len(r.MultipartForm.Value["file"]) > 0 {
			respond.WithError(w, "No file selected", http.StatusBadRequest)
			return
		}
		respond.WithError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := SecureFilename(header.Filename)
	if filename == "" {
		respond.WithError(w, "No file selected", http.StatusBadRequest)
		return
	}
	storedName := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + filename
	path := filepath.Join(h.uploadDir, storedName)
	if err = save(path, file); err != nil {
		h.log.Error("failed to save upload", slog.String("path", path), slog.Any("error", err))
		respond.WithError(w, "failed to save upload", http.StatusInternalServerError)
		return
	}
	if !extract.Supported(filename) {
		h.log.Debug("no text extractor for upload", slog.String("filename", filename))
	}

	tags := r.MultipartForm.Value["tags[]"]
	if tags == nil {
		tags = []string{}
	}
	doc := models.Document{
		ID:           uuid.NewString(),
		Filename:     storedName,
		OriginalName: filename,
		TextContent:  h.extractor.File(r.Context(), path),
		Tags:         tags,
		UploadedAt:   time.Now().UTC(),
	}
	if err = h.store.DocumentAdd(r.Context(), doc); err != nil {
		h.log.Error("failed to add document", slog.Any("error", err))
		if rmErr := os.Remove(path); rmErr != nil {
			h.log.Error("failed to remove upload", slog.String("path", path), slog.Any("error", rmErr))
		}
		respond.WithError(w, "failed to add document", http.StatusInternalServerError)
		return
	}
	h.log.Info("document uploaded", slog.String("id", doc.ID), slog.String("filename", storedName))

	respond.WithJSON(w, doc, http.StatusCreated)
}

func save(path string, r io.Reader) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return f.Close()
}
