package api

import (
	"net/http"
	"strings"

	"colloq/internal/engine"
)

// searchThreadsHandler serves full-text search over threads. text is the
// query; commentable_id and tags (comma-separated) narrow the result.
func searchThreadsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		query := strings.TrimSpace(r.URL.Query().Get("text"))
		if query == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}

		var tags []string
		if raw := r.URL.Query().Get("tags"); raw != "" {
			tags = strings.Split(raw, ",")
		}
		threads, err := eng.SearchThreads(
			r.Context(),
			query,
			r.URL.Query().Get("commentable_id"),
			tags,
			intParam(r, "limit", 20),
		)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"collection": threads})
	})
}
