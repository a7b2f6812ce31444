// Package services contains server-side business logic. This file implements
// AuthService, which handles signup, login, refresh-token rotation, identity
// resolution and email confirmation.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"contactsvc/internal/common"
	"contactsvc/internal/dbx"
	"contactsvc/internal/logging"
	"contactsvc/internal/server/auth"
	"contactsvc/internal/server/config"
	"contactsvc/internal/server/gravatar"
	"contactsvc/internal/server/mailer"
	"contactsvc/internal/server/models"
	"contactsvc/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
//   - Signup: create users, best-effort avatar + verification mail
//   - Login: verify credentials and mint tokens
//   - Refresh: rotate the stored refresh token and mint a new pair
//   - ResolveIdentity: turn a bearer access token into a user record
//   - ConfirmEmail / RequestVerification / Logout
type AuthService struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	codec                *auth.Codec
	mail                 mailer.Mailer
	logger               logging.Logger
	accessTokenValidity  time.Duration
	refreshTokenValidity time.Duration
	verifyTokenValidity  time.Duration
}

// NewAuthService constructs an AuthService using repositories, the token
// codec and server config. The codec, key and lifetimes are fixed here for
// the process lifetime.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec,
	mail mailer.Mailer, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                   db,
		repomanager:          m,
		codec:                codec,
		mail:                 mail,
		logger:               logger.With("module", "auth_service"),
		accessTokenValidity:  cfg.AccessTokenValidity,
		refreshTokenValidity: cfg.RefreshTokenValidity,
		verifyTokenValidity:  cfg.VerifyTokenValidity,
	}
}

// Signup creates a new user with a hashed password. The avatar lookup and the
// verification mail are best-effort: their failures are logged and never fail
// the signup itself.
func (s *AuthService) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, Password: hash}
	if url, err := gravatar.URL(email); err != nil {
		s.logger.Warn(ctx, "avatar lookup failed", "email", email, "error", err.Error())
	} else {
		user.Avatar = url
	}

	created, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.sendVerification(ctx, created)
	return created, nil
}

// Login verifies the provided credentials and, on success, persists a fresh
// refresh token and returns a new TokenPair. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !auth.VerifyPassword(password, user.Password) {
		return nil, common.ErrInvalidCredentials
	}
	return s.issuePair(ctx, user.ID, user.Email)
}

// Refresh validates a refresh token, rotates the stored value and returns a
// fresh TokenPair. A token whose stored counterpart was already superseded is
// treated as a replay: the live session is cleared and the call fails with
// common.ErrorUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}
	if claims.Scope != auth.ScopeRefresh {
		return nil, common.ErrInvalidScope
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if user.RefreshToken != refreshToken {
		if err := repo.UpdateRefreshToken(ctx, user.ID, ""); err != nil {
			s.logger.Error(ctx, "error clearing refresh token", "error", err.Error())
		}
		return nil, common.ErrorUnauthorized
	}

	return s.issuePair(ctx, user.ID, user.Email)
}

// ResolveIdentity verifies an access token and resolves its subject to a user
// record with exactly one storage read. Decode failures, a non-access scope
// and a vanished subject all collapse into common.ErrUnauthenticated.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}
	if claims.Scope != auth.ScopeAccess {
		return nil, common.ErrUnauthenticated
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// ConfirmEmail decodes a verification token (these tokens carry no scope
// claim, so none is checked) and marks its subject confirmed. Confirming an
// already confirmed user is a no-op.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil {
		return common.ErrUnauthenticated
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrUnauthenticated
		}
		return common.ErrorInternal
	}
	if user.Confirmed {
		return nil
	}
	return repo.MarkConfirmed(ctx, user.ID)
}

// RequestVerification re-issues a verification token for an existing
// unconfirmed user. Unknown addresses are logged and swallowed so the
// endpoint does not leak which emails are registered.
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "verification requested for unknown email", "email", email)
			return nil
		}
		return common.ErrorInternal
	}
	s.sendVerification(ctx, user)
	return nil
}

// Logout clears the stored refresh token, invalidating the live session.
func (s *AuthService) Logout(ctx context.Context, user *models.User) error {
	if err := s.repomanager.Users(s.db).UpdateRefreshToken(ctx, user.ID, ""); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// --- helpers below ---

// issuePair mints an access/refresh pair for the subject and persists the new
// refresh token inside one transaction, so a concurrent rotation for the same
// user observes the committed value (last committer wins).
func (s *AuthService) issuePair(ctx context.Context, userID int64, email string) (*TokenPair, error) {
	access, err := s.codec.Issue(email, auth.ScopeAccess, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.codec.Issue(email, auth.ScopeRefresh, s.refreshTokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Users(tx).UpdateRefreshToken(ctx, userID, refresh)
	}); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) {
	if user.Confirmed {
		return
	}
	token, err := s.codec.Issue(user.Email, auth.ScopeNone, s.verifyTokenValidity)
	if err != nil {
		s.logger.Error(ctx, "error issuing verification token", "error", err.Error())
		return
	}
	if err := s.mail.SendVerification(ctx, user.Email, user.Username, token); err != nil {
		s.logger.Error(ctx, "error sending verification mail", "email", user.Email, "error", err.Error())
	}
}
