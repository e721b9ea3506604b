// Package server assembles the HTTP routes and their filter chain.
package server

import (
	"database/sql"
	"net/http"
	"net/netip"

	"github.com/gorilla/mux"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/auth"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/feed"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/handlers"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/middleware"
)

// Tokens is what the router needs from the token service: issuing for the
// credential routes and verifying for the request gate and the feed.
type Tokens interface {
	auth.Issuer
	auth.Verifier
}

// Deps are the collaborators the routes are built from. Cache may be nil.
// With no TrustedProxies, X-Forwarded-For is ignored.
type Deps struct {
	DB             *sql.DB
	TrustedProxies []netip.Prefix
	Tokens         Tokens
	Hub            *feed.Hub
	Events         feed.Publisher
	Limiter        *middleware.RateLimiter
	Repos          handlers.RepoFetcher
	Cache          handlers.ResponseCache
	CORSOrigin     string
}

// NewRouter returns the API wrapped in its filter chain. The chain sits outside
// mux so preflights and unmatched paths pass through it too.
func NewRouter(d Deps) http.Handler {
	router := mux.NewRouter()
	private := auth.JWTMiddleware(d.Tokens)
	limited := d.Limiter.Middleware

	router.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	router.HandleFunc("/ws", feed.ServeWS(d.Hub, d.Tokens)).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.Handle("/users", limited(auth.RegisterHandler(d.DB, d.Tokens))).Methods(http.MethodPost)
	api.Handle("/auth", private(auth.MeHandler(d.DB))).Methods(http.MethodGet)
	api.Handle("/auth", limited(auth.LoginHandler(d.DB, d.Tokens))).Methods(http.MethodPost)

	api.Handle("/profile/me", private(handlers.GetMyProfile(d.DB))).Methods(http.MethodGet)
	api.Handle("/profile", handlers.ListProfiles(d.DB)).Methods(http.MethodGet)
	api.Handle("/profile", private(handlers.UpsertProfile(d.DB))).Methods(http.MethodPost)
	api.Handle("/profile", private(handlers.DeleteAccount(d.DB))).Methods(http.MethodDelete)
	api.Handle("/profile/user/{user_id}", handlers.GetProfileByUser(d.DB)).Methods(http.MethodGet)
	api.Handle("/profile/experience", private(handlers.AddExperience(d.DB))).Methods(http.MethodPut)
	api.Handle("/profile/experience/{exp_id}", private(handlers.DeleteExperience(d.DB))).Methods(http.MethodDelete)
	api.Handle("/profile/education", private(handlers.AddEducation(d.DB))).Methods(http.MethodPut)
	api.Handle("/profile/education/{edu_id}", private(handlers.DeleteEducation(d.DB))).Methods(http.MethodDelete)
	api.Handle("/profile/github/{username}", handlers.GitHubRepos(d.Repos, d.Cache)).Methods(http.MethodGet)

	posts := api.PathPrefix("/posts").Subrouter()
	posts.Use(private)
	posts.HandleFunc("", handlers.CreatePost(d.DB, d.Events)).Methods(http.MethodPost)
	posts.HandleFunc("", handlers.ListPosts(d.DB)).Methods(http.MethodGet)
	posts.HandleFunc("/{id}", handlers.GetPost(d.DB)).Methods(http.MethodGet)
	posts.HandleFunc("/{id}", handlers.DeletePost(d.DB, d.Events)).Methods(http.MethodDelete)
	posts.HandleFunc("/like/{id}", handlers.LikePost(d.DB, d.Events)).Methods(http.MethodPut)
	posts.HandleFunc("/unlike/{id}", handlers.UnlikePost(d.DB, d.Events)).Methods(http.MethodPut)
	posts.HandleFunc("/comment/{id}", handlers.AddComment(d.DB, d.Events)).Methods(http.MethodPost)
	posts.HandleFunc("/comment/{id}/{comment_id}", handlers.DeleteComment(d.DB, d.Events)).Methods(http.MethodDelete)

	return chain(router,
		middleware.RealIP(d.TrustedProxies),
		middleware.Logging,
		middleware.Recover,
		middleware.CORS(d.CORSOrigin),
	)
}

// chain applies filters so that the first one listed runs first.
func chain(h http.Handler, filters ...mux.MiddlewareFunc) http.Handler {
	for i := len(filters) - 1; i >= 0; i-- {
		h = filters[i](h)
	}
	return h
}
