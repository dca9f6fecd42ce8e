package get

import (
	"log/slog"
	"net/http"

	"github.com/a-h/kbserver/search"
	"github.com/a-h/respond"
)

func New(log *slog.Logger, source search.Source) Handler {
	return Handler{
		log:    log,
		source: source,
	}
}

type Handler struct {
	log    *slog.Logger
	source search.Source
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respond.WithError(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	corpus, err := search.Load(r.Context(), h.source)
	if err != nil {
		h.log.Error("failed to load corpus", slog.Any("error", err))
		respond.WithError(w, "failed to search", http.StatusInternalServerError)
		return
	}

	results := corpus.Find(q)
	h.log.Debug("search complete", slog.String("q", q), slog.Int("results", len(results)))
	respond.WithJSON(w, results, http.StatusOK)
}
