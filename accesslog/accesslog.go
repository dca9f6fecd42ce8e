// Package accesslog logs each HTTP request once it has been handled.
package accesslog

import (
	"log/slog"
	"net/http"
	"time"
)

func New(log *slog.Logger, next http.Handler) Handler {
	return Handler{
		log:  log.With(slog.String("component", "http")),
		next: next,
	}
}

type Handler struct {
	log  *slog.Logger
	next http.Handler
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	h.next.ServeHTTP(sw, r)
	h.log.Info("HTTP request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", sw.status),
		slog.Duration("duration", time.Since(start)),
		slog.String("remote_addr", r.RemoteAddr),
	)
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
