package api

import (
	"net/http"
	"strconv"

	"colloq/internal/engine"
)

// notificationsHandler lists the authenticated user's notifications, newest
// first.
func notificationsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		user := currentUser(r.Context())
		limit := intParam(r, "limit", 50)
		offset := intParam(r, "offset", 0)
		notifications, err := eng.Notifications(r.Context(), user.ID, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list notifications")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"collection": notifications,
			"limit":      limit,
			"offset":     offset,
		})
	})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
