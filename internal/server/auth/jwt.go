// Package auth implements the signed bearer-token issuer: HMAC-signed JWTs
// carrying a mandatory jti, a token kind, and the rotation family id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/myfinance/finauth/internal/common"
	"github.com/myfinance/finauth/internal/server/models"
)

// Claims is the token payload: registered claims (subject = user id,
// ID = jti) plus the token kind and the refresh-rotation family.
type Claims struct {
	jwt.RegisteredClaims
	Kind     models.TokenKind `json:"kind"`
	Email    string           `json:"email,omitempty"`
	FamilyID string           `json:"fam,omitempty"`
}

// Issuer creates and verifies signed tokens. Revocation is out of its scope:
// a verified token may still be revoked, and callers holding a RevocationStore
// must check it separately.
type Issuer struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

var signingMethods = map[string]jwt.SigningMethod{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// NewIssuer constructs an Issuer. The access TTL must be strictly shorter
// than the refresh TTL; only HMAC algorithms are supported.
func NewIssuer(secret string, algorithm string, accessTTL, refreshTTL, resetTTL time.Duration) (*Issuer, error) {
	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}
	if accessTTL >= refreshTTL {
		return nil, fmt.Errorf("access token ttl (%v) must be shorter than refresh token ttl (%v)", accessTTL, refreshTTL)
	}
	return &Issuer{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}, nil
}

// CreateToken signs the claims with a computed expiry. The jti is always
// minted here, never taken from the caller, so every token the issuer has
// ever produced can be revoked by id.
func (i *Issuer) CreateToken(c Claims, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	c.ID = uuid.NewString()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(i.method, c).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("error signing token: %w", err)
	}
	return signed, &c, nil
}

// CreateAccessToken mints an access token with the configured access TTL.
func (i *Issuer) CreateAccessToken(c Claims) (string, *Claims, error) {
	c.Kind = models.TokenKindAccess
	return i.CreateToken(c, i.accessTTL)
}

// CreateRefreshToken mints a refresh token with the configured refresh TTL.
func (i *Issuer) CreateRefreshToken(c Claims) (string, *Claims, error) {
	c.Kind = models.TokenKindRefresh
	return i.CreateToken(c, i.refreshTTL)
}

// CreateResetToken mints a short-lived password-reset token.
func (i *Issuer) CreateResetToken(c Claims) (string, *Claims, error) {
	c.Kind = models.TokenKindReset
	return i.CreateToken(c, i.resetTTL)
}

// IssuedPair carries a freshly minted token pair together with the claims
// actually signed into each token, so callers can record jtis and expiries.
type IssuedPair struct {
	Pair    models.TokenPair
	Access  *Claims
	Refresh *Claims
}

// CreateTokenPair issues an access and a refresh token with independent jtis.
// Both tokens share one family id; a fresh family is started when the input
// claims carry none (i.e. at login, as opposed to rotation).
func (i *Issuer) CreateTokenPair(c Claims) (*IssuedPair, error) {
	if c.FamilyID == "" {
		c.FamilyID = uuid.NewString()
	}

	access, accessClaims, err := i.CreateAccessToken(c)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := i.CreateRefreshToken(c)
	if err != nil {
		return nil, err
	}

	return &IssuedPair{
		Pair:    models.TokenPair{AccessToken: access, RefreshToken: refresh},
		Access:  accessClaims,
		Refresh: refreshClaims,
	}, nil
}

// VerifyToken decodes a token and checks its signature and expiry. It returns
// common.ErrTokenExpired, common.ErrInvalidSignature, or
// common.ErrMalformedToken (also used when the subject or jti is absent).
func (i *Issuer) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrInvalidSignature
		default:
			return nil, common.ErrMalformedToken
		}
	}
	if !token.Valid {
		return nil, common.ErrMalformedToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.Kind == "" {
		return nil, common.ErrMalformedToken
	}

	return claims, nil
}

// IssuedRecord converts signed claims into the ledger row persisted for every
// minted token.
func IssuedRecord(c *Claims) *models.IssuedToken {
	return &models.IssuedToken{
		JTI:       c.ID,
		Kind:      c.Kind,
		UserID:    c.Subject,
		FamilyID:  c.FamilyID,
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}
}

// RevokedRecord converts claims into the revocation row for their jti.
func RevokedRecord(c *Claims) *models.RevokedToken {
	return &models.RevokedToken{
		JTI:       c.ID,
		Kind:      c.Kind,
		UserID:    c.Subject,
		ExpiresAt: c.ExpiresAt.Time,
	}
}
