// Package limit caps the size of request bodies.
package limit

import (
	"log/slog"
	"net/http"

	"github.com/a-h/respond"
)

func New(log *slog.Logger, maxBytes int64, next http.Handler) *Limit {
	return &Limit{
		Log:      log,
		Next:     next,
		MaxBytes: maxBytes,
	}
}

// Limit rejects requests that declare a body larger than MaxBytes, and stops reading
// bodies of unknown length once MaxBytes have been read.
type Limit struct {
	Log      *slog.Logger
	Next     http.Handler
	MaxBytes int64
}

func (l *Limit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if l.MaxBytes <= 0 {
		l.Next.ServeHTTP(w, r)
		return
	}
	if r.ContentLength > l.MaxBytes {
		l.Log.Warn("request body too large", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Int64("contentLength", r.ContentLength))
		respond.WithError(w, "Request too large", http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, l.MaxBytes)
	l.Next.ServeHTTP(w, r)
}
