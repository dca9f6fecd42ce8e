package get_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/kbserver/db"
	"github.com/a-h/kbserver/handlers/webclips/get"
	"github.com/a-h/kbserver/models"
	"github.com/google/go-cmp/cmp"
)

func TestHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := db.NewFiles(t.TempDir())
	expected := []models.WebClip{
		{ID: "w1", URL: "https://example.com/1", Title: "One", Content: "one", Tags: []string{}},
		{ID: "w2", URL: "https://example.com/2", Title: "Two", Content: "two", Tags: []string{"x"}},
	}
	for _, c := range expected {
		if err := store.WebClipAdd(context.Background(), c); err != nil {
			t.Fatalf("failed to add clip: %v", err)
		}
	}

	w := httptest.NewRecorder()
	get.New(log, store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/web_clips", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var actual []models.WebClip
	if err := json.Unmarshal(w.Body.Bytes(), &actual); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Error(diff)
	}
}
