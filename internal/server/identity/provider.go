// Package identity abstracts the external identity provider that owns the
// actual account records. The credential service only creates, looks up, and
// deletes accounts by e-mail; everything else about the provider is opaque.
package identity

import "context"

// Provider is the external account authority. Implementations must bound
// every call with a timeout: an unreachable provider means "cannot
// authenticate", never "authenticated".
type Provider interface {
	// CreateAccount registers the account and returns the provider-assigned
	// user id.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// DeleteAccount removes the account. Used as the compensating action
	// when local profile creation fails after the account was created.
	DeleteAccount(ctx context.Context, userID string) error

	// AccountExists reports whether an account is registered for the e-mail.
	AccountExists(ctx context.Context, email string) (bool, error)
}
