package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists refresh token hashes so sessions can be rotated and
// revoked.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return err
}

// ConsumeRefresh revokes a live token and returns its owner.  The revoke is a
// single conditional UPDATE, so a token can be consumed at most once even
// under concurrent refresh calls.
func (r *TokenRepo) ConsumeRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
         WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
		tokenHash)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, ErrInvalidRefresh
	}
	var userID uint64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT user_id FROM refresh_tokens WHERE token_hash = ? LIMIT 1", tokenHash).Scan(&userID); err != nil {
		return 0, err
	}
	return userID, nil
}

// RevokeAllForUser revokes all user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE user_id = ? AND revoked_at IS NULL",
		userID)
	return err
}
