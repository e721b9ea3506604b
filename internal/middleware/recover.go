package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
)

func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				slog.Error("panic serving request", "panic", p, "path", r.URL.Path, "stack", string(debug.Stack()))
				httpx.ServerError(w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
