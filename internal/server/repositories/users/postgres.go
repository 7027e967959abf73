package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myfinance/finauth/internal/common"
	"github.com/myfinance/finauth/internal/dbx"
	"github.com/myfinance/finauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the profile under the caller-supplied id. The id comes from
// the identity provider and must stay identical in both stores.
func (r *PostgresRepository) Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (id, email, full_name, password_hash, timezone, currency, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		profile.ID, profile.Email, profile.FullName, profile.PasswordHash,
		profile.Timezone, profile.Currency, profile.Language,
	).Scan(&profile.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	return profile, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	query := `
		SELECT id, email, full_name, password_hash, timezone, currency, language, created_at
		FROM user_profiles
		WHERE email = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT id, email, full_name, password_hash, timezone, currency, language, created_at
		FROM user_profiles
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error {
	query := `
		UPDATE user_profiles
		SET password_hash = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	query := `
		DELETE FROM user_profiles
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.UserProfile, error) {
	profile := &models.UserProfile{}
	err := row.Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.PasswordHash,
		&profile.Timezone, &profile.Currency, &profile.Language, &profile.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return profile, nil
}
