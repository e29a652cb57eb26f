package store

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"time"
)

// SetPendingCode stores the verification code for a username, replacing any
// earlier one.
func SetPendingCode(ctx context.Context, db *sql.DB, username, code string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO pending_codes (username, code, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (username) DO UPDATE SET code = excluded.code, expires_at = excluded.expires_at`,
		username, code, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing pending code: %w", err)
	}
	return nil
}

// ConsumePendingCode checks a verification code. A matching, unexpired code is
// deleted so it cannot be used twice.
func ConsumePendingCode(ctx context.Context, db *sql.DB, username, code string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var stored string
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT code, expires_at FROM pending_codes WHERE username = ?`, username,
	).Scan(&stored, &expiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting pending code: %w", err)
	}

	if time.Now().After(expiresAt) {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_codes WHERE username = ?`, username); err != nil {
		return false, fmt.Errorf("deleting pending code: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing code check: %w", err)
	}
	return true, nil
}
