package accesslog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler(t *testing.T) {
	tests := []struct {
		name           string
		handler        http.HandlerFunc
		expectedStatus int
	}{
		{
			name:           "implicit 200 is logged",
			handler:        func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "explicit status is logged",
			handler:        func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "first status wins",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.WriteHeader(http.StatusInternalServerError)
			},
			expectedStatus: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewJSONHandler(&buf, nil))
			h := New(log, tt.handler)

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes", nil))

			var entry struct {
				Msg    string `json:"msg"`
				Method string `json:"method"`
				Path   string `json:"path"`
				Status int    `json:"status"`
			}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to decode log entry %q: %v", buf.String(), err)
			}
			if entry.Method != http.MethodGet {
				t.Errorf("expected method GET, got %q", entry.Method)
			}
			if entry.Path != "/api/notes" {
				t.Errorf("expected path /api/notes, got %q", entry.Path)
			}
			if entry.Status != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, entry.Status)
			}
		})
	}
}
