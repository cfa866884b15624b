package api

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"colloq/internal/engine"
	"colloq/internal/ratelimit"
)

type Options struct {
	Version            string
	Dev                bool
	RateLimitPerMinute int
}

func NewRouter(database *sql.DB, eng *engine.Engine, opts Options) *http.ServeMux {
	mux := http.NewServeMux()
	limiter := ratelimit.NewLimiter()
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(database, rateLimitMiddleware(limiter, opts.RateLimitPerMinute, h))
	}

	mux.HandleFunc("/api/v1/status", statusHandler(database, opts.Version))
	mux.Handle("/api/v1/whoami", withAuth(whoAmIHandler()))
	mux.Handle("/api/v1/commentables/", withAuth(commentableThreadsHandler(eng)))
	mux.Handle("/api/v1/threads/", withAuth(threadsScopedHandler(eng)))
	mux.Handle("/api/v1/comments/", withAuth(commentsScopedHandler(eng)))
	mux.Handle("/api/v1/subscriptions", withAuth(subscriptionsHandler(eng)))
	mux.Handle("/api/v1/notifications", withAuth(notificationsHandler(eng)))
	mux.Handle("/api/v1/search/threads", withAuth(searchThreadsHandler(eng)))
	mux.Handle("/api/v1/users", withAuth(adminOnly(usersCollectionHandler(database))))
	mux.Handle("/api/v1/users/", withAuth(usersScopedHandler(database, eng)))
	mux.Handle("/api/v1/mcp", mcpHandler(database, eng, opts.Version))
	if opts.Dev {
		mux.Handle("/api/v1/clean", withAuth(adminOnly(cleanHandler(eng))))
	}
	return mux
}

func statusHandler(database *sql.DB, version string) http.HandlerFunc {
	type statusResponse struct {
		Status    string `json:"status"`
		Version   string `json:"version"`
		Timestamp string `json:"timestamp"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}

		if err := database.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{
			Status:    "ok",
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// threadsScopedHandler dispatches everything under /api/v1/threads/. The
// tag routes live here too because they share the prefix; they are matched
// before any path segment is treated as a thread id.
func threadsScopedHandler(eng *engine.Engine) http.Handler {
	item := threadItemHandler(eng)
	comments := threadCommentsHandler(eng)
	votes := threadVotesHandler(eng)
	subscribers := threadSubscribersHandler(eng)
	tags := tagsHandler(eng)
	autocomplete := tagsAutocompleteHandler(eng)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tail := pathTail(r.URL.Path, "/api/v1/threads/")
		switch {
		case tail == "tags":
			tags.ServeHTTP(w, r)
		case tail == "tags/autocomplete":
			autocomplete.ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/comments"):
			comments.ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/votes"):
			votes.ServeHTTP(w, r)
		case strings.HasSuffix(r.URL.Path, "/subscribers"):
			subscribers.ServeHTTP(w, r)
		default:
			item.ServeHTTP(w, r)
		}
	})
}

func commentsScopedHandler(eng *engine.Engine) http.Handler {
	item := commentItemHandler(eng)
	votes := commentVotesHandler(eng)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/votes") {
			votes.ServeHTTP(w, r)
			return
		}
		item.ServeHTTP(w, r)
	})
}

func cleanHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if err := eng.Reset(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset content")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleaned"})
	})
}

func whoAmIHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, currentUser(r.Context()))
	})
}
