package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/mux"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/database"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/feed"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/httpx"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
)

type textRequest struct {
	Text string `json:"text"`
}

func (r textRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Text, validation.Required.Error("Text is required")),
	)
}

func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req textRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := req.Validate(); err != nil {
		httpx.WriteValidation(w, err)
		return "", false
	}
	return req.Text, true
}

// loadPost writes the 404/500 response itself and returns nil when the post
// could not be loaded.
func loadPost(w http.ResponseWriter, r *http.Request, db *sql.DB, id string) *models.Post {
	if !validID(id) {
		httpx.WriteError(w, http.StatusNotFound, "Post not found")
		return nil
	}
	post, err := database.GetPost(r.Context(), db, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "Post not found")
			return nil
		}
		slog.Error("failed to get post", "error", err, "post_id", id)
		httpx.ServerError(w)
		return nil
	}
	return post
}

func CreatePost(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		userID := currentUserID(r)

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

		post, err := database.CreatePost(r.Context(), db, userID, text, user.Name, user.Avatar)
		if err != nil {
			slog.Error("failed to create post", "error", err)
			httpx.ServerError(w)
			return
		}

		feed.Notify(r.Context(), events, feed.TypePostCreated, post)
		httpx.WriteJSON(w, http.StatusOK, post)
	}
}

func ListPosts(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := database.ListPosts(r.Context(), db)
		if err != nil {
			slog.Error("failed to list posts", "error", err)
			httpx.ServerError(w)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, posts)
	}
}

func GetPost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := loadPost(w, r, db, mux.Vars(r)["id"])
		if post == nil {
			return
		}
		httpx.WriteJSON(w, http.StatusOK, post)
	}
}

func DeletePost(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := loadPost(w, r, db, mux.Vars(r)["id"])
		if post == nil {
			return
		}
		if post.User != currentUserID(r) {
			httpx.WriteError(w, http.StatusUnauthorized, "User not authorized")
			return
		}

		if err := database.DeletePost(r.Context(), db, post.ID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				httpx.WriteError(w, http.StatusNotFound, "Post not found")
				return
			}
			slog.Error("failed to delete post", "error", err, "post_id", post.ID)
			httpx.ServerError(w)
			return
		}

		feed.Notify(r.Context(), events, feed.TypePostDeleted, feed.PostDeletedPayload{PostID: post.ID})
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"msg": "Post removed"})
	}
}

func LikePost(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := loadPost(w, r, db, mux.Vars(r)["id"])
		if post == nil {
			return
		}
		userID := currentUserID(r)

		if post.LikedBy(userID) {
			httpx.WriteError(w, http.StatusBadRequest, "Post already liked")
			return
		}
		if err := database.AddLike(r.Context(), db, post.ID, userID); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				httpx.WriteError(w, http.StatusBadRequest, "Post already liked")
				return
			}
			slog.Error("failed to like post", "error", err, "post_id", post.ID)
			httpx.ServerError(w)
			return
		}

		respondLikes(w, r, db, events, feed.TypePostLiked, post.ID, userID)
	}
}

func UnlikePost(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post := loadPost(w, r, db, mux.Vars(r)["id"])
		if post == nil {
			return
		}
		userID := currentUserID(r)

		if !post.LikedBy(userID) {
			httpx.WriteError(w, http.StatusBadRequest, "Post has not yet been liked")
			return
		}
		if err := database.RemoveLike(r.Context(), db, post.ID, userID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				httpx.WriteError(w, http.StatusBadRequest, "Post has not yet been liked")
				return
			}
			slog.Error("failed to unlike post", "error", err, "post_id", post.ID)
			httpx.ServerError(w)
			return
		}

		respondLikes(w, r, db, events, feed.TypePostUnliked, post.ID, userID)
	}
}

func respondLikes(w http.ResponseWriter, r *http.Request, db *sql.DB, events feed.Publisher, eventType, postID, userID string) {
	likes, err := database.GetLikes(r.Context(), db, postID)
	if err != nil {
		slog.Error("failed to get likes", "error", err, "post_id", postID)
		httpx.ServerError(w)
		return
	}
	feed.Notify(r.Context(), events, eventType, feed.LikesPayload{PostID: postID, UserID: userID, Likes: likes})
	httpx.WriteJSON(w, http.StatusOK, likes)
}

func AddComment(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, ok := decodeText(w, r)
		if !ok {
			return
		}
		post := loadPost(w, r, db, mux.Vars(r)["id"])
		if post == nil {
			return
		}
		userID := currentUserID(r)

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

		if _, err := database.AddComment(r.Context(), db, post.ID, userID, text, user.Name, user.Avatar); err != nil {
			slog.Error("failed to add comment", "error", err, "post_id", post.ID)
			httpx.ServerError(w)
			return
		}

		respondComments(w, r, db, events, feed.TypeCommentAdded, post.ID)
	}
}

func DeleteComment(db *sql.DB, events feed.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		post := loadPost(w, r, db, vars["id"])
		if post == nil {
			return
		}

		comment := post.Comment(vars["comment_id"])
		if comment == nil {
			httpx.WriteError(w, http.StatusNotFound, "Comment does not exist")
			return
		}
		if comment.User != currentUserID(r) {
			httpx.WriteError(w, http.StatusUnauthorized, "User not authorized")
			return
		}

		if err := database.DeleteComment(r.Context(), db, post.ID, comment.ID); err != nil {
			slog.Error("failed to delete comment", "error", err, "post_id", post.ID)
			httpx.ServerError(w)
			return
		}

		respondComments(w, r, db, events, feed.TypeCommentRemoved, post.ID)
	}
}

func respondComments(w http.ResponseWriter, r *http.Request, db *sql.DB, events feed.Publisher, eventType, postID string) {
	comments, err := database.GetComments(r.Context(), db, postID)
	if err != nil {
		slog.Error("failed to get comments", "error", err, "post_id", postID)
		httpx.ServerError(w)
		return
	}
	feed.Notify(r.Context(), events, eventType, feed.CommentsPayload{PostID: postID, Comments: comments})
	httpx.WriteJSON(w, http.StatusOK, comments)
}
