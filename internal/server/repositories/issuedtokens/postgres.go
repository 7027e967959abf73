package issuedtokens

import (
	"context"
	"fmt"

	"github.com/myfinance/finauth/internal/dbx"
	"github.com/myfinance/finauth/internal/server/models"
)

// PostgresRepository implements the issued-token ledger over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, token *models.IssuedToken) error {
	query := `
		INSERT INTO issued_tokens (jti, token_kind, user_id, family_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.JTI, token.Kind, token.UserID, token.FamilyID, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ActiveForUser(ctx context.Context, userID string) ([]*models.IssuedToken, error) {
	query := `
		SELECT jti, token_kind, user_id, family_id, issued_at, expires_at
		FROM issued_tokens
		WHERE user_id = $1 AND expires_at > now()
	`
	return r.queryTokens(ctx, query, userID)
}

func (r *PostgresRepository) ActiveForFamily(ctx context.Context, familyID string) ([]*models.IssuedToken, error) {
	query := `
		SELECT jti, token_kind, user_id, family_id, issued_at, expires_at
		FROM issued_tokens
		WHERE family_id = $1 AND expires_at > now()
	`
	return r.queryTokens(ctx, query, familyID)
}

func (r *PostgresRepository) CleanExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM issued_tokens
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

func (r *PostgresRepository) queryTokens(ctx context.Context, query string, arg any) ([]*models.IssuedToken, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tokens []*models.IssuedToken
	for rows.Next() {
		tok := &models.IssuedToken{}
		if err := rows.Scan(&tok.JTI, &tok.Kind, &tok.UserID, &tok.FamilyID, &tok.IssuedAt, &tok.ExpiresAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}
