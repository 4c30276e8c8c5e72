package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenRepo stores refresh tokens by SHA-256 hash.  The raw token only
// ever exists on the client.
type TokenRepo struct {
	x *sqlx.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{x: sqlx.NewDb(db, "mysql")} }

type refreshRow struct {
	UserID    uint64       `db:"user_id"`
	TokenHash string       `db:"token_hash"`
	ExpiresAt time.Time    `db:"expires_at"`
	RevokedAt sql.NullTime `db:"revoked_at"`
}

func (r refreshRow) live(now time.Time) bool {
	return !r.RevokedAt.Valid && now.Before(r.ExpiresAt)
}

// StoreRefresh records a newly issued token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.x.NamedExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		 VALUES (:user_id, :token_hash, :expires_at)`,
		refreshRow{UserID: userID, TokenHash: tokenHash, ExpiresAt: exp.UTC()})
	return err
}

// ValidateRefresh returns the owning user id of a live token, or
// ErrTokenInvalid when it is unknown, revoked or expired.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var row refreshRow
	err := r.x.GetContext(ctx, &row,
		`SELECT user_id, token_hash, expires_at, revoked_at
		   FROM refresh_tokens WHERE token_hash = ? LIMIT 1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrTokenInvalid
	}
	if err != nil {
		return 0, err
	}
	if !row.live(time.Now().UTC()) {
		return 0, ErrTokenInvalid
	}
	return row.UserID, nil
}

// RevokeByHash revokes one live token.  It returns ErrTokenInvalid when
// no live row matched, so of two concurrent rotations only one succeeds.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	res, err := r.x.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
		  WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
		tokenHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenInvalid
	}
	return nil
}

// RevokeAllForUser signs a user out of every session.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.x.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
		  WHERE user_id = ? AND revoked_at IS NULL`, userID)
	return err
}

// PurgeExpired deletes tokens that expired or were revoked before cutoff.
func (r *TokenRepo) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.x.ExecContext(ctx,
		`DELETE FROM refresh_tokens
		  WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`,
		cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
