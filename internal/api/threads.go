package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"colloq/internal/engine"
	"colloq/internal/models"
)

type createThreadRequest struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	CourseID      string   `json:"course_id"`
	Anonymous     bool     `json:"anonymous"`
	Tags          []string `json:"tags"`
	AutoSubscribe bool     `json:"auto_subscribe"`
}

type updateThreadRequest struct {
	Title *string  `json:"title"`
	Body  *string  `json:"body"`
	Tags  []string `json:"tags"`
}

// commentableThreadsHandler serves /api/v1/commentables/{id}/threads. The
// commentable id is opaque; it is never validated against anything.
func commentableThreadsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tail := pathTail(r.URL.Path, "/api/v1/commentables/")
		commentableID, rest, _ := strings.Cut(tail, "/")
		if commentableID == "" || rest != "threads" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			threads, err := eng.ListThreadsFor(r.Context(), commentableID, boolParam(r, "recursive"))
			if err != nil {
				writeEngineError(w, err, "failed to list threads")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"collection": threads})
		case http.MethodPost:
			user := currentUser(r.Context())
			var req createThreadRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			thread, err := eng.CreateThread(r.Context(), engine.NewThread{
				CommentableID: commentableID,
				CourseID:      req.CourseID,
				Title:         req.Title,
				Body:          req.Body,
				AuthorID:      &user.ID,
				Anonymous:     req.Anonymous,
				Tags:          req.Tags,
				AutoSubscribe: req.AutoSubscribe,
			})
			if err != nil {
				writeEngineError(w, err, "failed to create thread")
				return
			}
			writeJSON(w, http.StatusCreated, thread)
		case http.MethodDelete:
			if err := eng.DeleteThreadsFor(r.Context(), commentableID); err != nil {
				writeEngineError(w, err, "failed to delete threads")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	})
}

func threadItemHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := pathTail(r.URL.Path, "/api/v1/threads/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			thread, err := eng.GetThread(r.Context(), id, boolParam(r, "recursive"))
			if err != nil {
				writeEngineError(w, err, "failed to read thread")
				return
			}
			writeJSON(w, http.StatusOK, thread)
		case http.MethodPut:
			var req updateThreadRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			thread, err := eng.UpdateThread(r.Context(), id, engine.ThreadUpdate{
				Title: req.Title,
				Body:  req.Body,
				Tags:  req.Tags,
			})
			if err != nil {
				writeEngineError(w, err, "failed to update thread")
				return
			}
			writeJSON(w, http.StatusOK, thread)
		case http.MethodDelete:
			if err := eng.DeleteThread(r.Context(), id); err != nil {
				writeEngineError(w, err, "failed to delete thread")
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		default:
			methodNotAllowed(w)
		}
	})
}

func threadCommentsHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(pathTail(r.URL.Path, "/api/v1/threads/"), "/comments")
		id = strings.Trim(id, "/")

		switch r.Method {
		case http.MethodGet:
			thread, err := eng.GetThread(r.Context(), id, boolParam(r, "recursive"))
			if err != nil {
				writeEngineError(w, err, "failed to read thread")
				return
			}
			writeJSON(w, http.StatusOK, thread)
		case http.MethodPost:
			user := currentUser(r.Context())
			var req createCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid json payload")
				return
			}
			comment, err := eng.CreateComment(r.Context(), engine.NewComment{
				ParentType:    models.TargetThread,
				ParentID:      id,
				Body:          req.Body,
				AuthorID:      &user.ID,
				Anonymous:     req.Anonymous,
				AutoSubscribe: req.AutoSubscribe,
			})
			if err != nil {
				writeEngineError(w, err, "failed to create comment")
				return
			}
			writeJSON(w, http.StatusCreated, comment)
		default:
			methodNotAllowed(w)
		}
	})
}

func threadVotesHandler(eng *engine.Engine) http.Handler {
	return votesHandler(eng, "/api/v1/threads/", models.TargetThread)
}

func threadSubscribersHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		id := strings.TrimSuffix(pathTail(r.URL.Path, "/api/v1/threads/"), "/subscribers")
		id = strings.Trim(id, "/")
		subscribers, err := eng.Subscribers(r.Context(), id)
		if err != nil {
			writeEngineError(w, err, "failed to list subscribers")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"collection": subscribers})
	})
}
