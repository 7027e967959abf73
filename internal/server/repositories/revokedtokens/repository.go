// Package revokedtokens declares the revocation-store contract: recording
// revoked jtis and answering revocation-membership queries.
package revokedtokens

import (
	"context"

	"github.com/myfinance/finauth/internal/server/models"
)

// Repository persists revoked-token records. All writes are idempotent on
// (jti, kind): revoking the same token twice leaves exactly one record.
type Repository interface {
	// Revoke inserts a revocation record, swallowing duplicates.
	Revoke(ctx context.Context, rec *models.RevokedToken) error

	// RevokeFirstUse inserts a revocation record and reports whether this
	// call inserted it. A false result means some other caller revoked the
	// same (jti, kind) first — the signal used to detect refresh reuse.
	RevokeFirstUse(ctx context.Context, rec *models.RevokedToken) (bool, error)

	// RevokeAll inserts revocation records for every given token,
	// swallowing duplicates.
	RevokeAll(ctx context.Context, recs []*models.RevokedToken) error

	// IsRevoked reports whether a record exists for (jti, kind).
	IsRevoked(ctx context.Context, jti string, kind models.TokenKind) (bool, error)

	// CleanExpired deletes records whose original expiry has passed and
	// returns the number removed. Maintenance only: expired tokens are
	// already rejected by signature verification.
	CleanExpired(ctx context.Context) (int64, error)
}
