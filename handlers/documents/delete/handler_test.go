package delete_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/handlers/documents/delete"
	"github.com/a-h/kbserver/models"
)

func TestHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	setup := func(t *testing.T, writeUpload bool) (store *db.Files, uploadDir string, h delete.Handler) {
		store = db.NewFiles(t.TempDir())
		uploadDir = t.TempDir()
		doc := models.Document{ID: "d1", Filename: "abc_report.txt", OriginalName: "report.txt", Tags: []string{}}
		if err := store.DocumentAdd(context.Background(), doc); err != nil {
			t.Fatalf("failed to add document: %v", err)
		}
		if writeUpload {
			if err := os.WriteFile(filepath.Join(uploadDir, doc.Filename), []byte("report"), 0644); err != nil {
				t.Fatal(err)
			}
		}
		return store, uploadDir, delete.New(log, store, uploadDir)
	}
	serve := func(h delete.Handler, id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil)
		r.SetPathValue("id", id)
		h.ServeHTTP(w, r)
		return w
	}

	t.Run("record and upload are removed", func(t *testing.T) {
		store, uploadDir, h := setup(t, true)
		w := serve(h, "d1")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Document deleted") {
			t.Errorf("unexpected body %q", w.Body.String())
		}
		if _, err := os.Stat(filepath.Join(uploadDir, "abc_report.txt")); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected upload to be removed, got %v", err)
		}
		docs, err := store.DocumentList(context.Background())
		if err != nil {
			t.Fatalf("failed to list documents: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected no documents, got %d", len(docs))
		}
	})
	t.Run("missing upload file is not an error", func(t *testing.T) {
		_, _, h := setup(t, false)
		if w := serve(h, "d1"); w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
	})
	t.Run("missing document returns 404", func(t *testing.T) {
		store, _, h := setup(t, true)
		w := serve(h, "missing")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "Document not found") {
			t.Errorf("unexpected body %q", w.Body.String())
		}
		docs, _ := store.DocumentList(context.Background())
		if len(docs) != 1 {
			t.Errorf("expected document to remain, got %d", len(docs))
		}
	})
}
