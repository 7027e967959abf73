package revokedtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myfinance/finauth/internal/dbx"
	"github.com/myfinance/finauth/internal/server/models"
)

// PostgresRepository implements the revocation store over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx). Idempotency rests on the UNIQUE
// (jti, token_kind) constraint of revoked_tokens.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const insertQuery = `
	INSERT INTO revoked_tokens (jti, token_kind, user_id, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (jti, token_kind) DO NOTHING
`

func (r *PostgresRepository) Revoke(ctx context.Context, rec *models.RevokedToken) error {
	if _, err := r.db.ExecContext(ctx, insertQuery, rec.JTI, rec.Kind, rec.UserID, rec.ExpiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// RevokeFirstUse reports whether this call inserted the record. Concurrent
// attempts to revoke the same (jti, kind) are serialized by the unique
// constraint, so exactly one caller observes true.
func (r *PostgresRepository) RevokeFirstUse(ctx context.Context, rec *models.RevokedToken) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertQuery, rec.JTI, rec.Kind, rec.UserID, rec.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("error performing sql request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}

func (r *PostgresRepository) RevokeAll(ctx context.Context, recs []*models.RevokedToken) error {
	for _, rec := range recs {
		if err := r.Revoke(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) IsRevoked(ctx context.Context, jti string, kind models.TokenKind) (bool, error) {
	query := `
		SELECT 1
		FROM revoked_tokens
		WHERE jti = $1 AND token_kind = $2
	`
	var one int
	err := r.db.QueryRowContext(ctx, query, jti, kind).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *PostgresRepository) CleanExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM revoked_tokens
		WHERE expires_at < now()
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}
