package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/dbx"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
	"github.com/lib/pq"
)

const postSelect = `SELECT id, user_id, text, name, avatar, created_at FROM posts`

func scanPost(row scanner) (*models.Post, error) {
	p := models.Post{Likes: []models.Like{}, Comments: []models.Comment{}}
	if err := row.Scan(&p.ID, &p.User, &p.Text, &p.Name, &p.Avatar, &p.Date); err != nil {
		return nil, err
	}
	return &p, nil
}

func CreatePost(ctx context.Context, db dbx.DBTX, userID, text, name, avatar string) (*models.Post, error) {
	p, err := scanPost(db.QueryRowContext(ctx,
		`INSERT INTO posts (user_id, text, name, avatar) VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, text, name, avatar, created_at`,
		userID, text, name, avatar,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return p, nil
}

// ListPosts returns every post, newest first, with likes and comments.
func ListPosts(ctx context.Context, db dbx.DBTX) ([]models.Post, error) {
	rows, err := db.QueryContext(ctx, postSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadPostChildren(ctx, db, ptrs); err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(ptrs))
	for _, p := range ptrs {
		posts = append(posts, *p)
	}
	return posts, nil
}

func GetPost(ctx context.Context, db dbx.DBTX, id string) (*models.Post, error) {
	p, err := scanPost(db.QueryRowContext(ctx, postSelect+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if err := loadPostChildren(ctx, db, []*models.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func DeletePost(ctx context.Context, db dbx.DBTX, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func loadPostChildren(ctx context.Context, db dbx.DBTX, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*models.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, post_id, user_id FROM post_likes
		WHERE post_id = ANY($1) ORDER BY created_at DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get likes: %w", err)
	}
	for rows.Next() {
		var l models.Like
		var postID string
		if err := rows.Scan(&l.ID, &postID, &l.User); err != nil {
			rows.Close()
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Likes = append(p.Likes, l)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.QueryContext(ctx, `
		SELECT id, post_id, user_id, text, name, avatar, created_at FROM post_comments
		WHERE post_id = ANY($1) ORDER BY created_at DESC`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Comment
		var postID string
		if err := rows.Scan(&c.ID, &postID, &c.User, &c.Text, &c.Name, &c.Avatar, &c.Date); err != nil {
			return err
		}
		if p, ok := byID[postID]; ok {
			p.Comments = append(p.Comments, c)
		}
	}
	return rows.Err()
}

// --- Likes ---

// AddLike returns ErrDuplicate when the user already likes the post.
func AddLike(ctx context.Context, db dbx.DBTX, postID, userID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)`, postID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to add like: %w", err)
	}
	return nil
}

// RemoveLike returns ErrNotFound when there was no like to remove.
func RemoveLike(ctx context.Context, db dbx.DBTX, postID, userID string) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func GetLikes(ctx context.Context, db dbx.DBTX, postID string) ([]models.Like, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	defer rows.Close()

	likes := []models.Like{}
	for rows.Next() {
		var l models.Like
		if err := rows.Scan(&l.ID, &l.User); err != nil {
			return nil, err
		}
		likes = append(likes, l)
	}
	return likes, rows.Err()
}

// --- Comments ---

func AddComment(ctx context.Context, db dbx.DBTX, postID, userID, text, name, avatar string) (*models.Comment, error) {
	var c models.Comment
	err := db.QueryRowContext(ctx,
		`INSERT INTO post_comments (post_id, user_id, text, name, avatar) VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, text, name, avatar, created_at`,
		postID, userID, text, name, avatar,
	).Scan(&c.ID, &c.User, &c.Text, &c.Name, &c.Avatar, &c.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &c, nil
}

func DeleteComment(ctx context.Context, db dbx.DBTX, postID, commentID string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM post_comments WHERE id = $1 AND post_id = $2`, commentID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func GetComments(ctx context.Context, db dbx.DBTX, postID string) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, text, name, avatar, created_at FROM post_comments
		 WHERE post_id = $1 ORDER BY created_at DESC`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.User, &c.Text, &c.Name, &c.Avatar, &c.Date); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
