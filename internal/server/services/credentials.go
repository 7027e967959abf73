// Package services contains server-side business logic. This file implements
// CredentialService, which handles registration, login, token rotation and
// revocation, and the password-reset flows.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myfinance/finauth/internal/common"
	"github.com/myfinance/finauth/internal/dbx"
	"github.com/myfinance/finauth/internal/logging"
	"github.com/myfinance/finauth/internal/server/auth"
	"github.com/myfinance/finauth/internal/server/identity"
	"github.com/myfinance/finauth/internal/server/models"
	"github.com/myfinance/finauth/internal/server/password"
	"github.com/myfinance/finauth/internal/server/repositories/repomanager"
)

// Mailer delivers password-reset tokens out of band.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer is a Mailer that only logs the delivery. Used until a real mail
// integration exists and in development environments.
type LogMailer struct {
	Log logging.Logger
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.Log.Info(ctx, "password reset token issued", "email", email, "token", token)
	return nil
}

// RegisterRequest carries everything needed to create an account and its
// local profile.
type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Timezone string
	Currency string
	Language string
}

// CredentialService provides credential-related operations:
//   - Register / Login: create accounts and verify credentials
//   - Refresh: rotate refresh tokens, detecting and punishing reuse
//   - Authenticate / Logout: verify and revoke bearer tokens
//   - password reset and change flows
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *auth.Issuer
	provider    identity.Provider
	mailer      Mailer
	log         logging.Logger
}

// NewCredentialService constructs a CredentialService from its collaborators.
func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, issuer *auth.Issuer,
	provider identity.Provider, mailer Mailer, log logging.Logger) *CredentialService {
	return &CredentialService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		provider:    provider,
		mailer:      mailer,
		log:         log,
	}
}

// ValidatePassword runs the password policy without touching any state.
func (s *CredentialService) ValidatePassword(candidate string) password.ValidationResult {
	return password.Validate(candidate)
}

// Register validates the password, creates the account with the identity
// provider, and stores the local profile. If the profile cannot be stored the
// provider account is deleted again so the two stores never diverge.
func (s *CredentialService) Register(ctx context.Context, req *RegisterRequest) (*models.UserProfile, error) {
	if res := password.Validate(req.Password); !res.Valid {
		return nil, &common.ValidationError{Violations: res.Errors}
	}

	userID, err := s.provider.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	profile := &models.UserProfile{
		ID:           userID,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Timezone:     req.Timezone,
		Currency:     req.Currency,
		Language:     req.Language,
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, profile)
	if err != nil {
		if delErr := s.provider.DeleteAccount(ctx, userID); delErr != nil {
			s.log.Error(ctx, "orphaned provider account after failed profile creation",
				"user_id", userID, "error", delErr)
		}
		return nil, fmt.Errorf("error creating profile: %w", err)
	}
	return created, nil
}

// Login verifies the e-mail and password and, on success, mints a token pair
// starting a fresh rotation family. The same ErrInvalidCredentials is returned
// for an unknown e-mail and for a wrong password.
func (s *CredentialService) Login(ctx context.Context, email, plainPassword string) (*models.TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !password.Check(user.PasswordHash, plainPassword) {
		return nil, common.ErrInvalidCredentials
	}

	pair, err := s.mintPair(ctx, auth.Claims{Email: user.Email}, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return pair, nil
}

// mintPair issues an access/refresh pair for the subject and records both
// ledger rows in one transaction. The family id in c is preserved when set.
func (s *CredentialService) mintPair(ctx context.Context, c auth.Claims, subject string) (*models.TokenPair, error) {
	c.Subject = subject
	issued, err := s.issuer.CreateTokenPair(c)
	if err != nil {
		return nil, fmt.Errorf("error issuing tokens: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.IssuedTokens(tx)
		if err := repo.Record(ctx, auth.IssuedRecord(issued.Access)); err != nil {
			return err
		}
		return repo.Record(ctx, auth.IssuedRecord(issued.Refresh))
	})
	if err != nil {
		return nil, fmt.Errorf("error recording issued tokens: %w", err)
	}
	return &issued.Pair, nil
}

// Authenticate verifies an access token end to end: signature, expiry, kind,
// and revocation. An unreachable revocation store fails closed.
func (s *CredentialService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.issuer.VerifyToken(accessToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != models.TokenKindAccess {
		return nil, common.ErrWrongTokenKind
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).IsRevoked(ctx, claims.ID, claims.Kind)
	if err != nil {
		return nil, common.ErrPersistenceUnavailable
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the presented tokens. It is idempotent: tokens that are
// already revoked, expired, or unverifiable are skipped without error, since
// none of them can be used again anyway.
func (s *CredentialService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)
		for _, t := range []string{accessToken, refreshToken} {
			if t == "" {
				continue
			}
			claims, err := s.issuer.VerifyToken(t)
			if err != nil {
				continue
			}
			if err := repo.Revoke(ctx, auth.RevokedRecord(claims)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair in the same family is issued, atomically. If the token was already
// used, the rotation loses the race, the whole family is revoked, and
// ErrTokenReuseDetected is returned. The family revocation commits even
// though the caller gets an error.
func (s *CredentialService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.issuer.VerifyToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Kind != models.TokenKindRefresh {
		return nil, common.ErrWrongTokenKind
	}

	var pair *models.TokenPair
	var reused bool

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		revoked := s.repomanager.RevokedTokens(tx)

		first, err := revoked.RevokeFirstUse(ctx, auth.RevokedRecord(claims))
		if err != nil {
			return fmt.Errorf("error revoking refresh token: %w", err)
		}
		if !first {
			// Second presentation of the same refresh token. Burn every
			// live token descending from the same login.
			reused = true
			active, err := s.repomanager.IssuedTokens(tx).ActiveForFamily(ctx, claims.FamilyID)
			if err != nil {
				return fmt.Errorf("error listing token family: %w", err)
			}
			return revoked.RevokeAll(ctx, revocationRecords(active))
		}

		next := auth.Claims{Email: claims.Email, FamilyID: claims.FamilyID}
		next.Subject = claims.Subject
		issued, err := s.issuer.CreateTokenPair(next)
		if err != nil {
			return fmt.Errorf("error issuing tokens: %w", err)
		}
		ledger := s.repomanager.IssuedTokens(tx)
		if err := ledger.Record(ctx, auth.IssuedRecord(issued.Access)); err != nil {
			return err
		}
		if err := ledger.Record(ctx, auth.IssuedRecord(issued.Refresh)); err != nil {
			return err
		}
		pair = &issued.Pair
		return nil
	})
	if err != nil {
		return nil, err
	}
	if reused {
		s.log.Warn(ctx, "refresh token reuse detected, family revoked",
			"user_id", claims.Subject, "family_id", claims.FamilyID)
		return nil, common.ErrTokenReuseDetected
	}
	return pair, nil
}

// RevokeAllForUser revokes every unexpired token minted for the user and
// returns how many were revoked. Already-revoked tokens count as revoked.
func (s *CredentialService) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	count := 0
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		active, err := s.repomanager.IssuedTokens(tx).ActiveForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error listing user tokens: %w", err)
		}
		count = len(active)
		return s.repomanager.RevokedTokens(tx).RevokeAll(ctx, revocationRecords(active))
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RequestPasswordReset issues a reset token for the account and hands it to
// the mailer. The response is the same whether or not the e-mail is known, so
// the endpoint cannot be used to probe for accounts.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "error looking up user for password reset", "error", err)
		}
		return nil
	}

	token, claims, err := s.issueResetFor(ctx, user)
	if err != nil {
		s.log.Error(ctx, "error issuing reset token", "error", err)
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Error(ctx, "error sending reset token", "user_id", claims.Subject, "error", err)
	}
	return nil
}

func (s *CredentialService) issueResetFor(ctx context.Context, user *models.UserProfile) (string, *auth.Claims, error) {
	c := auth.Claims{Email: user.Email}
	c.Subject = user.ID
	token, claims, err := s.issuer.CreateResetToken(c)
	if err != nil {
		return "", nil, err
	}
	if err := s.repomanager.IssuedTokens(s.db).Record(ctx, auth.IssuedRecord(claims)); err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// ConfirmPasswordReset trades a valid, unused reset token for a new password.
// On success the reset token and every other live token of the user are
// revoked, so old sessions cannot survive a reset.
func (s *CredentialService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	claims, err := s.issuer.VerifyToken(resetToken)
	if err != nil {
		return err
	}
	if claims.Kind != models.TokenKindReset {
		return common.ErrWrongTokenKind
	}

	revoked, err := s.repomanager.RevokedTokens(s.db).IsRevoked(ctx, claims.ID, claims.Kind)
	if err != nil {
		return common.ErrPersistenceUnavailable
	}
	if revoked {
		return common.ErrTokenRevoked
	}

	if res := password.Validate(newPassword); !res.Valid {
		return &common.ValidationError{Violations: res.Errors}
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, claims.Subject, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		revokedRepo := s.repomanager.RevokedTokens(tx)
		if err := revokedRepo.Revoke(ctx, auth.RevokedRecord(claims)); err != nil {
			return err
		}
		active, err := s.repomanager.IssuedTokens(tx).ActiveForUser(ctx, claims.Subject)
		if err != nil {
			return fmt.Errorf("error listing user tokens: %w", err)
		}
		return revokedRepo.RevokeAll(ctx, revocationRecords(active))
	})
}

// ChangePassword replaces the password of an authenticated user after
// re-verifying the current one, then revokes every live token so other
// sessions must log in again.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidCredentials
		}
		return common.ErrorInternal
	}
	if !password.Check(user.PasswordHash, currentPassword) {
		return common.ErrInvalidCredentials
	}

	if res := password.Validate(newPassword); !res.Valid {
		return &common.ValidationError{Violations: res.Errors}
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, userID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		active, err := s.repomanager.IssuedTokens(tx).ActiveForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("error listing user tokens: %w", err)
		}
		return s.repomanager.RevokedTokens(tx).RevokeAll(ctx, revocationRecords(active))
	})
}

// GetProfile returns the locally stored profile for the user id.
func (s *CredentialService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// PurgeExpired removes expired rows from both token stores and returns the
// total number removed. Meant to run periodically in the background.
func (s *CredentialService) PurgeExpired(ctx context.Context) (int64, error) {
	revoked, err := s.repomanager.RevokedTokens(s.db).CleanExpired(ctx)
	if err != nil {
		return 0, err
	}
	issued, err := s.repomanager.IssuedTokens(s.db).CleanExpired(ctx)
	if err != nil {
		return revoked, err
	}
	return revoked + issued, nil
}

func revocationRecords(tokens []*models.IssuedToken) []*models.RevokedToken {
	recs := make([]*models.RevokedToken, 0, len(tokens))
	for _, t := range tokens {
		recs = append(recs, &models.RevokedToken{
			JTI:       t.JTI,
			Kind:      t.Kind,
			UserID:    t.UserID,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return recs
}
