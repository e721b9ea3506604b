package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
)

// TokenHeader carries the signed token on every private request.
const TokenHeader = "x-auth-token"

type contextKey string

const UserIDKey contextKey = "user_id"

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFrom returns the id placed by JWTMiddleware.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

// JWTMiddleware rejects requests without a valid token and otherwise runs
// next with the token's user id in the request context.
func JWTMiddleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "No token, authorization denied")
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				slog.Debug("rejected token", "error", err, "path", r.URL.Path)
				httpx.WriteError(w, http.StatusUnauthorized, "Token is not valid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.User.ID)))
		})
	}
}
