// Package handlers maps the profile, post and GitHub API routes onto the
// store. Every handler is built from its dependencies and returns an
// http.HandlerFunc.
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/auth"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
)

func Health(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "devconnector",
	})
}

func currentUserID(r *http.Request) string {
	id, _ := auth.UserIDFrom(r.Context())
	return id
}

// validID reports whether s can be a row id. Anything else is treated as a
// missing row rather than passed to the store.
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
