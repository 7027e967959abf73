package models

import "time"

// TokenKind discriminates the three kinds of signed tokens the service mints.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
	TokenKindReset   TokenKind = "reset"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IssuedToken is the ledger row written for every minted token. FamilyID ties
// together the chain of refresh rotations descending from one login, so a
// detected reuse can burn the whole chain at once.
type IssuedToken struct {
	JTI       string
	Kind      TokenKind
	UserID    string
	FamilyID  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevokedToken marks a single (jti, kind) as unusable before its natural
// expiry. Rows whose ExpiresAt has passed are dead weight and may be purged.
type RevokedToken struct {
	ID        int64
	JTI       string
	Kind      TokenKind
	UserID    string
	RevokedAt time.Time
	ExpiresAt time.Time
}
