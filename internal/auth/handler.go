package auth

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/database"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
)

// bcryptCost is lowered in tests.
var bcryptCost = bcrypt.DefaultCost

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email,
			validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email")),
		validation.Field(&r.Password,
			validation.Required.Error("Please enter a password with 6 or more characters"),
			validation.Length(6, 0).Error("Please enter a password with 6 or more characters")),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Please include a valid email"),
			is.Email.Error("Please include a valid email")),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

type tokenResponse struct {
	Token string `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidCredentials(w http.ResponseWriter) {
	httpx.WriteValidation(w, validation.Errors{"credentials": errors.New("Invalid Credentials")})
}

func userExists(w http.ResponseWriter) {
	httpx.WriteValidation(w, validation.Errors{"email": errors.New("User already exists")})
}

// RegisterHandler creates a user and responds with a fresh token.
func RegisterHandler(db *sql.DB, tokens Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = normalizeEmail(req.Email)

		if err := req.Validate(); err != nil {
			httpx.WriteValidation(w, err)
			return
		}

		ctx := r.Context()
		exists, err := database.EmailExists(ctx, db, req.Email)
		if err != nil {
			slog.Error("failed to check email", "error", err)
			httpx.ServerError(w)
			return
		}
		if exists {
			userExists(w)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			httpx.ServerError(w)
			return
		}

		user, err := database.CreateUser(ctx, db, req.Name, req.Email, string(hash), Gravatar(req.Email))
		if err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				userExists(w)
				return
			}
			slog.Error("failed to create user", "error", err)
			httpx.ServerError(w)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			slog.Error("failed to generate token", "error", err)
			httpx.ServerError(w)
			return
		}

		slog.Info("user registered", "user_id", user.ID)
		httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// LoginHandler exchanges email and password for a token.
func LoginHandler(db *sql.DB, tokens Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Email = normalizeEmail(req.Email)

		if err := req.Validate(); err != nil {
			httpx.WriteValidation(w, err)
			return
		}

		user, err := database.GetUserByEmail(r.Context(), db, req.Email)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				invalidCredentials(w)
				return
			}
			slog.Error("failed to get user", "error", err)
			httpx.ServerError(w)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			invalidCredentials(w)
			return
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			slog.Error("failed to generate token", "error", err)
			httpx.ServerError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// MeHandler returns the authenticated user without the password.
func MeHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFrom(r.Context())
		user, err := database.GetUserByID(r.Context(), db, userID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				httpx.WriteError(w, http.StatusNotFound, "User not found")
				return
			}
			slog.Error("failed to get user", "error", err)
			httpx.ServerError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, user)
	}
}
