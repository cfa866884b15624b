package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"colloq/internal/auth"
	"colloq/internal/db"
	"colloq/internal/engine"
)

type createUserRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// usersCollectionHandler creates users. The API key is generated here and
// returned exactly once; only its hash is stored.
func usersCollectionHandler(database *sql.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.Role == "" {
			req.Role = "user"
		}
		if req.Role != "user" && req.Role != "admin" {
			writeError(w, http.StatusBadRequest, "role must be user or admin")
			return
		}

		apiKey, err := auth.GenerateAPIKey()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to generate api key")
			return
		}
		id := uuid.NewString()
		if err := db.CreateUser(r.Context(), database, id, req.Name, req.Role, auth.HashAPIKey(apiKey)); err != nil {
			if strings.Contains(err.Error(), "UNIQUE") {
				writeError(w, http.StatusConflict, "name already taken")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to create user")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":      id,
			"name":    req.Name,
			"role":    req.Role,
			"api_key": apiKey,
		})
	})
}

// usersScopedHandler serves /api/v1/users/{id} and the per-user
// notifications listing. Reading or deleting other users requires admin;
// users may read themselves and their own notifications.
func usersScopedHandler(database *sql.DB, eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tail := pathTail(r.URL.Path, "/api/v1/users/")
		id, rest, _ := strings.Cut(tail, "/")
		if id == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		user := currentUser(r.Context())
		if user.ID != id && user.Role != "admin" {
			writeError(w, http.StatusForbidden, "not allowed")
			return
		}

		if rest == "notifications" {
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			limit := intParam(r, "limit", 50)
			offset := intParam(r, "offset", 0)
			notifications, err := eng.Notifications(r.Context(), id, limit, offset)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to list notifications")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"collection": notifications,
				"limit":      limit,
				"offset":     offset,
			})
			return
		}
		if rest != "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			u, err := db.GetUser(r.Context(), database, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					writeError(w, http.StatusNotFound, "user not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to read user")
				return
			}
			writeJSON(w, http.StatusOK, u)
		case http.MethodDelete:
			if user.Role != "admin" {
				writeError(w, http.StatusForbidden, "admin role required")
				return
			}
			if err := db.DeleteUser(r.Context(), database, id); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					writeError(w, http.StatusNotFound, "user not found")
					return
				}
				writeError(w, http.StatusInternalServerError, "failed to delete user")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	})
}
