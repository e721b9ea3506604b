package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/dbx"
	"github.com/avishkaindula/avishkaindula-0049-mern-course-devconnector-finished-back-end/internal/models"
)

func CreateUser(ctx context.Context, db dbx.DBTX, name, email, passwordHash, avatar string) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password, avatar) VALUES ($1, $2, $3, $4)
		 RETURNING id, name, email, avatar, created_at`,
		name, email, passwordHash, avatar,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Date)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func EmailExists(ctx context.Context, db dbx.DBTX, email string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// GetUserByEmail includes the password hash; it is the only lookup that does.
func GetUserByEmail(ctx context.Context, db dbx.DBTX, email string) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, password, avatar, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, db dbx.DBTX, id string) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// DeleteAccount removes the user's posts, profile and user row together.
func DeleteAccount(ctx context.Context, db *sql.DB, userID string) error {
	err := dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete posts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete profile: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
