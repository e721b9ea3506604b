package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/github"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
)

const githubCacheTTL = 10 * time.Minute

type RepoFetcher interface {
	LatestRepos(ctx context.Context, username string) ([]github.Repo, error)
}

// ResponseCache stores encoded responses. Get returns an error on a miss,
// which IsMiss recognises.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IsMiss(err error) bool
}

// GitHubRepos serves a user's latest repositories. cache may be nil.
func GitHubRepos(repos RepoFetcher, cache ResponseCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(mux.Vars(r)["username"])
		if username == "" {
			httpx.WriteError(w, http.StatusNotFound, "No Github profile found")
			return
		}
		key := strings.ToLower(username)

		if cache != nil {
			cached, err := cache.Get(r.Context(), key)
			if err == nil {
				httpx.WriteJSON(w, http.StatusOK, json.RawMessage(cached))
				return
			}
			if !cache.IsMiss(err) {
				slog.Warn("failed to read github cache", "error", err, "username", username)
			}
		}

		list, err := repos.LatestRepos(r.Context(), username)
		if err != nil {
			if errors.Is(err, github.ErrNotFound) {
				httpx.WriteError(w, http.StatusNotFound, "No Github profile found")
				return
			}
			slog.Error("failed to fetch github repos", "error", err, "username", username)
			httpx.ServerError(w)
			return
		}
		if list == nil {
			list = []github.Repo{}
		}

		if cache != nil {
			if data, err := json.Marshal(list); err == nil {
				if err := cache.Set(r.Context(), key, data, githubCacheTTL); err != nil {
					slog.Warn("failed to cache github repos", "error", err, "username", username)
				}
			}
		}
		httpx.WriteJSON(w, http.StatusOK, list)
	}
}
