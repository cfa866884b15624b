package api

import (
	"net/http"
	"strconv"

	"colloq/internal/engine"
)

func tagsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		tags, err := eng.AllTags(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list tags")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"collection": tags})
	})
}

// tagsAutocompleteHandler matches tags against the value query parameter.
// Busier tags come first; max caps the result and falls back to the
// configured default when absent.
func tagsAutocompleteHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		max := 0
		if raw := r.URL.Query().Get("max"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "max must be an integer")
				return
			}
			max = parsed
		}
		tags, err := eng.Autocomplete(r.Context(), r.URL.Query().Get("value"), max, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to autocomplete tags")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"collection": tags})
	})
}
