// Package issuedtokens declares the ledger of minted tokens. The ledger is
// what makes "revoke everything for this user" and token-family revocation
// possible: the revocation store alone only knows what is already dead.
package issuedtokens

import (
	"context"

	"github.com/myfinance/finauth/internal/server/models"
)

// Repository persists one row per minted token.
type Repository interface {
	// Record inserts a ledger row for a freshly minted token.
	Record(ctx context.Context, token *models.IssuedToken) error

	// ActiveForUser returns every unexpired token minted for the user.
	ActiveForUser(ctx context.Context, userID string) ([]*models.IssuedToken, error)

	// ActiveForFamily returns every unexpired token of a rotation family.
	ActiveForFamily(ctx context.Context, familyID string) ([]*models.IssuedToken, error)

	// CleanExpired deletes rows whose expiry has passed and returns the
	// number removed.
	CleanExpired(ctx context.Context) (int64, error)
}
