package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"colloq/internal/engine"
	"colloq/internal/models"
)

type createCommentRequest struct {
	Body          string `json:"body"`
	Anonymous     bool   `json:"anonymous"`
	AutoSubscribe bool   `json:"auto_subscribe"`
}

type updateCommentRequest struct {
	Body     *string `json:"body"`
	Endorsed *bool   `json:"endorsed"`
}

// commentItemHandler serves /api/v1/comments/{id}. POST creates a reply
// under the comment; the reply lands one level deeper in the same thread.
func commentItemHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := pathTail(r.URL.Path, "/api/v1/comments/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			comment, err := eng.GetComment(r.Context(), id, boolParam(r, "recursive"))
			if err != nil {
				writeEngineError(w, err, "failed to read comment")
				return
			}
			writeJSON(w, http.StatusOK, comment)
		case http.MethodPost:
			user := currentUser(r.Context())
			var req createCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			reply, err := eng.CreateComment(r.Context(), engine.NewComment{
				ParentType:    models.TargetComment,
				ParentID:      id,
				Body:          req.Body,
				AuthorID:      &user.ID,
				Anonymous:     req.Anonymous,
				AutoSubscribe: req.AutoSubscribe,
			})
			if err != nil {
				writeEngineError(w, err, "failed to create reply")
				return
			}
			writeJSON(w, http.StatusCreated, reply)
		case http.MethodPut:
			var req updateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			comment, err := eng.UpdateComment(r.Context(), id, engine.CommentUpdate{
				Body:     req.Body,
				Endorsed: req.Endorsed,
			})
			if err != nil {
				writeEngineError(w, err, "failed to update comment")
				return
			}
			writeJSON(w, http.StatusOK, comment)
		case http.MethodDelete:
			if err := eng.DeleteComment(r.Context(), id); err != nil {
				writeEngineError(w, err, "failed to delete comment")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	})
}

func commentVotesHandler(eng *engine.Engine) http.Handler {
	return votesHandler(eng, "/api/v1/comments/", models.TargetComment)
}

// votesHandler serves the /votes leaf for both target kinds. PUT casts,
// DELETE retracts; both respond with the resulting tally.
func votesHandler(eng *engine.Engine, prefix string, targetType models.TargetType) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(pathTail(r.URL.Path, prefix), "/votes")
		id = strings.Trim(id, "/")
		user := currentUser(r.Context())
		target := models.Target{Type: targetType, ID: id}

		switch r.Method {
		case http.MethodPut:
			tally, err := eng.Vote(r.Context(), user.ID, target)
			if err != nil {
				writeEngineError(w, err, "failed to record vote")
				return
			}
			writeJSON(w, http.StatusOK, tally)
		case http.MethodDelete:
			tally, err := eng.Unvote(r.Context(), user.ID, target)
			if err != nil {
				writeEngineError(w, err, "failed to retract vote")
				return
			}
			writeJSON(w, http.StatusOK, tally)
		case http.MethodGet:
			tally, err := eng.Tally(r.Context(), target)
			if err != nil {
				writeEngineError(w, err, "failed to read tally")
				return
			}
			writeJSON(w, http.StatusOK, tally)
		default:
			methodNotAllowed(w)
		}
	})
}
