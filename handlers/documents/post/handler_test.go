package post_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/extract"
	"github.com/a-h/kbserver/handlers/documents/post"
	"github.com/a-h/kbserver/models"
	"github.com/google/go-cmp/cmp"
)

type part struct {
	field    string
	filename string
	content  string
}

func newRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		var w io.Writer
		var err error
		if p.field == "file" {
			w, err = mw.CreateFormFile(p.field, p.filename)
		} else {
			w, err = mw.CreateFormField(p.field)
		}
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err = io.WriteString(w, p.content); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/documents", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	setup := func(t *testing.T, maxUploadSize int64) (store *db.Files, uploadDir string, h post.Handler) {
		store = db.NewFiles(t.TempDir())
		uploadDir = t.TempDir()
		return store, uploadDir, post.New(log, store, extract.New(log), uploadDir, maxUploadSize)
	}

	t.Run("text files are stored with their raw content", func(t *testing.T) {
		store, uploadDir, h := setup(t, 0)
		text := "Line one.\r\nLine two.\n\n  Indented line.\n"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(t,
			part{field: "file", filename: "my notes.txt", content: text},
			part{field: "tags[]", content: "work"},
			part{field: "tags[]", content: "draft"},
		))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var doc models.Document
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if doc.TextContent != text {
			t.Errorf("expected text content %q, got %q", text, doc.TextContent)
		}
		if doc.OriginalName != "my_notes.txt" {
			t.Errorf("expected original name my_notes.txt, got %q", doc.OriginalName)
		}
		if diff := cmp.Diff([]string{"work", "draft"}, doc.Tags); diff != "" {
			t.Error(diff)
		}
		prefix, name, ok := strings.Cut(doc.Filename, "_")
		if !ok || len(prefix) != 32 || name != "my_notes.txt" {
			t.Errorf("unexpected stored filename %q", doc.Filename)
		}
		stored, err := os.ReadFile(filepath.Join(uploadDir, doc.Filename))
		if err != nil {
			t.Fatalf("expected upload to be saved: %v", err)
		}
		if string(stored) != text {
			t.Errorf("expected stored file to match upload")
		}

		docs, err := store.DocumentList(context.Background())
		if err != nil {
			t.Fatalf("failed to list documents: %v", err)
		}
		if diff := cmp.Diff([]models.Document{doc}, docs); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("unsupported files have empty text content", func(t *testing.T) {
		_, _, h := setup(t, 0)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(t, part{field: "file", filename: "image.png", content: "\x89PNG"}))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var doc models.Document
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if doc.TextContent != "" {
			t.Errorf("expected empty text content, got %q", doc.TextContent)
		}
		if doc.Tags == nil {
			t.Error("expected tags to be an empty list")
		}
	})
	t.Run("invalid PDF content is replaced with a placeholder", func(t *testing.T) {
		_, _, h := setup(t, 0)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, newRequest(t, part{field: "file", filename: "broken.pdf", content: "not a pdf"}))
		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		var doc models.Document
		if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if doc.TextContent != extract.PDFPlaceholder {
			t.Errorf("expected placeholder, got %q", doc.TextContent)
		}
	})

	errorTests := []struct {
		name            string
		req             func(t *testing.T) *http.Request
		maxUploadSize   int64
		expectedStatus  int
		expectedMessage string
	}{
		{
			name: "missing file part",
			req: func(t *testing.T) *http.Request {
				return newRequest(t, part{field: "tags[]", content: "a"})
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "No file provided",
		},
		{
			name: "not a multipart request",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader("{}"))
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "No file provided",
		},
		{
			name: "empty file selection",
			req: func(t *testing.T) *http.Request {
				return newRequest(t, part{field: "file", filename: "", content: ""})
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "No file selected",
		},
		{
			name: "file name with no safe characters",
			req: func(t *testing.T) *http.Request {
				return newRequest(t, part{field: "file", filename: "\u65e5\u672c", content: "x"})
			},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "No file selected",
		},
		{
			name: "upload too large",
			req: func(t *testing.T) *http.Request {
				return newRequest(t, part{field: "file", filename: "big.txt", content: strings.Repeat("x", 64*1024)})
			},
			maxUploadSize:   1024,
			expectedStatus:  http.StatusRequestEntityTooLarge,
			expectedMessage: "File too large",
		},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			store, uploadDir, h := setup(t, tt.maxUploadSize)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, tt.req(t))
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tt.expectedMessage) {
				t.Errorf("expected message %q, got %q", tt.expectedMessage, w.Body.String())
			}
			docs, err := store.DocumentList(context.Background())
			if err != nil {
				t.Fatalf("failed to list documents: %v", err)
			}
			if len(docs) != 0 {
				t.Errorf("expected no documents, got %d", len(docs))
			}
			entries, err := os.ReadDir(uploadDir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("expected no uploads, got %d", len(entries))
			}
		})
	}
}
