package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh tokens, one row per user. Rotation
// overwrites the row in place via upsert, so the previous value stops
// validating the instant a new one is issued.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Get returns the stored hash and expiry for a user's refresh token.
// sql.ErrNoRows means the user has never logged in (or logged out).
func (r *TokenRepo) Get(ctx context.Context, userID uint64) (string, time.Time, error) {
	var (
		hash      string
		expiresAt time.Time
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT token_hash, expires_at FROM refresh_tokens WHERE user_id=? LIMIT 1",
		userID).Scan(&hash, &expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return hash, expiresAt, nil
}

// Upsert writes the user's refresh-token row, creating it on first login
// and overwriting it on every rotation. user_id is the table's unique
// key, which is what enforces one live token per user.
func (r *TokenRepo) Upsert(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		 VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE token_hash=VALUES(token_hash), expires_at=VALUES(expires_at)`,
		userID, tokenHash, exp)
	return err
}

// Delete removes the user's refresh-token row (logout).
func (r *TokenRepo) Delete(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
