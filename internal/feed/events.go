// Package feed pushes post activity to connected websocket clients.
package feed

import (
	"context"
	"encoding/json"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
)

const (
	TypePostCreated    = "post.created"
	TypePostDeleted    = "post.deleted"
	TypePostLiked      = "post.liked"
	TypePostUnliked    = "post.unliked"
	TypeCommentAdded   = "comment.added"
	TypeCommentRemoved = "comment.removed"

	TypePing = "ping"
	TypePong = "pong"
)

type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type PostDeletedPayload struct {
	PostID string `json:"post_id"`
}

type LikesPayload struct {
	PostID string        `json:"post_id"`
	UserID string        `json:"user_id"`
	Likes  []models.Like `json:"likes"`
}

type CommentsPayload struct {
	PostID   string           `json:"post_id"`
	Comments []models.Comment `json:"comments"`
}

// Publisher delivers events to every connected client, possibly on other
// server instances.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	var p json.RawMessage
	if payload != nil {
		var err error
		p, err = json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
	}
	return Event{Type: eventType, Payload: p}, nil
}
