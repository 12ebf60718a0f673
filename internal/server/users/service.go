package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gestortareas/internal/common"
	"gestortareas/internal/server/auth"
	"gestortareas/internal/server/config"
	"gestortareas/internal/server/refreshtokens"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UpdateProfileParams carries the optional profile fields of a partial
// update; nil means "leave unchanged".
type UpdateProfileParams struct {
	Username   *string
	Email      *string
	FirstNames *string
	LastNames  *string
}

// Service implements account and session operations: registration, login,
// access-token refresh, logout (single and global), password change, and
// profile reads/updates.
//
// Passwords are hashed here, before any repository call, so the stored
// secret is always a bcrypt hash regardless of which path writes it.
type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	jwtRefreshSecret             []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.JWTSecret),
		jwtRefreshSecret:             []byte(cfg.JWTRefreshSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   cfg.BcryptCost,
	}
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// every stored value goes through this, making email matching
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new active user and opens a first session for it.
// Duplicate email/username yield ErrEmailTaken/ErrUsernameTaken.
//
// The user insert and the refresh-token insert are deliberately not wrapped
// in one transaction: a failure between them leaves a valid account whose
// client simply has to log in.
func (s *Service) Register(ctx context.Context, username, email, password, firstNames, lastNames string) (*User, *TokenPair, error) {

	email = NormalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, nil, common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, common.ErrorInternal
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, nil, common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, nil, common.ErrorInternal
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, nil, common.ErrorInternal
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstNames:   firstNames,
		LastNames:    lastNames,
		IsActive:     true,
	}

	// a concurrent registration can still lose the insert race after the
	// pre-checks; the repository maps that violation back onto the taxonomy
	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, nil, err
		}
		return nil, nil, common.ErrorInternal
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Login verifies credentials and opens a new session. As a side effect it
// purges the user's already-expired refresh tokens and bumps the user's
// modification timestamp.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {

	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, common.ErrorUnauthorized
		}
		return nil, nil, common.ErrorInternal
	}

	if !user.IsActive {
		return nil, nil, common.ErrorUnauthorized
	}

	if !s.checkPassword(user.PasswordHash, password) {
		return nil, nil, common.ErrorUnauthorized
	}

	// opportunistic cleanup of dead sessions
	if err := s.refreshTokenRepo.DeleteExpiredForUser(ctx, user.ID); err != nil {
		return nil, nil, common.ErrorInternal
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.Touch(ctx, user.ID); err != nil {
		return nil, nil, common.ErrorInternal
	}

	return user, pair, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token. The
// refresh token itself is not rotated; the session keeps its original
// expiry. The token must pass a dual check: its row must exist and be
// unexpired, AND its signature must verify, AND the user must still be
// active. A token failing any check after lookup has its row deleted so it
// can never be retried.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {

	stored, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if stored.Expires.Before(time.Now()) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return "", common.ErrRefreshTokenExpired
	}

	userID, err := auth.ParseRefreshToken(refreshToken, s.jwtRefreshSecret)
	if err != nil {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return "", common.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return "", common.ErrorUnauthorized
	}

	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return "", common.ErrorInternal
	}

	return accessToken, nil
}

// Logout revokes a single session. Unknown tokens are ignored, so calling
// logout twice is harmless.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// LogoutAll revokes every session of the user.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.refreshTokenRepo.DeleteAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}
	return nil
}

// ChangePassword verifies the current secret, stores the new hash, and
// revokes every session of the user, forcing re-authentication everywhere.
func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	if !s.checkPassword(user.PasswordHash, currentPassword) {
		return common.ErrorUnauthorized
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return common.ErrorInternal
	}

	if err := s.refreshTokenRepo.DeleteAllForUser(ctx, userID); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// GetProfile returns the user record for the authenticated account.
func (s *Service) GetProfile(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile applies the supplied fields only. Changing the username or
// email re-checks uniqueness against other accounts.
func (s *Service) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) (*User, error) {

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	if params.Username != nil && *params.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, *params.Username); err == nil {
			return nil, common.ErrUsernameTaken
		} else if !errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInternal
		}
		user.Username = *params.Username
	}

	if params.Email != nil {
		email := NormalizeEmail(*params.Email)
		if email != user.Email {
			if _, err := s.repo.GetByEmail(ctx, email); err == nil {
				return nil, common.ErrEmailTaken
			} else if !errors.Is(err, common.ErrorNotFound) {
				return nil, common.ErrorInternal
			}
			user.Email = email
		}
	}

	if params.FirstNames != nil {
		user.FirstNames = *params.FirstNames
	}
	if params.LastNames != nil {
		user.LastNames = *params.LastNames
	}

	user, err = s.repo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, common.ErrorInternal
	}

	return user, nil
}

// --- helpers below ---

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) checkPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	return auth.GenerateAccessToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *Service) generateTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := auth.GenerateRefreshToken(user.ID, s.jwtRefreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
