package api

import (
	"encoding/json"
	"net/http"

	"colloq/internal/engine"
)

type subscriptionRequest struct {
	ThreadID string `json:"thread_id"`
}

// subscriptionsHandler serves /api/v1/subscriptions for the authenticated
// user. POST subscribes, DELETE unsubscribes; both are idempotent.
func subscriptionsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		var req subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		if req.ThreadID == "" {
			writeError(w, http.StatusBadRequest, "thread_id is required")
			return
		}

		switch r.Method {
		case http.MethodPost:
			sub, err := eng.Subscribe(r.Context(), user.ID, req.ThreadID)
			if err != nil {
				writeEngineError(w, err, "failed to subscribe")
				return
			}
			writeJSON(w, http.StatusOK, sub)
		case http.MethodDelete:
			if err := eng.Unsubscribe(r.Context(), user.ID, req.ThreadID); err != nil {
				writeEngineError(w, err, "failed to unsubscribe")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
		default:
			methodNotAllowed(w)
		}
	})
}
