package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/zaloga/internal/model"
)

// ErrUsernameTaken is returned when registering a username that already exists.
var ErrUsernameTaken = errors.New("username already exists")

const userColumns = `id, name, username, password_hash, phone, created_at, verified_at`

// CreateUser creates a new, unverified user.
func CreateUser(ctx context.Context, db *sql.DB, name, username, passwordHash, phone string) (*model.User, error) {
	existing, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, username, password_hash, phone) VALUES (?, ?, ?, ?)`,
		name, username, passwordHash, phone,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns a user by username.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username,
	))
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// MarkUserVerified records that the user confirmed their verification code.
func MarkUserVerified(ctx context.Context, db *sql.DB, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET verified_at = CURRENT_TIMESTAMP WHERE id = ? AND verified_at IS NULL`, id,
	)
	if err != nil {
		return fmt.Errorf("verifying user: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// scanUser reads one user row, returning nil if there is none.
func scanUser(row *sql.Row) (*model.User, error) {
	u := &model.User{}
	var verifiedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Username, &u.PasswordHash, &u.Phone, &u.CreatedAt, &verifiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		u.VerifiedAt = &verifiedAt.Time
	}
	return u, nil
}
