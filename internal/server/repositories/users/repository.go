// Package users declares the repository contract for locally stored user
// profiles (the table carrying the password hash).
package users

import (
	"context"

	"github.com/myfinance/finauth/internal/server/models"
)

// Repository persists user profiles.
type Repository interface {
	// Create inserts a new profile and returns it with the generated id.
	Create(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, error)

	// GetByEmail returns the profile for the given e-mail, or
	// common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.UserProfile, error)

	// GetByID returns the profile for the given user id, or
	// common.ErrorNotFound.
	GetByID(ctx context.Context, userID string) (*models.UserProfile, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID string, passwordHash string) error

	// Delete removes a profile. Used by the register compensation path.
	Delete(ctx context.Context, userID string) error
}
