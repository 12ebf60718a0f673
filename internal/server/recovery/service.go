package recovery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gestortareas/internal/common"
	"gestortareas/internal/server/config"
	"gestortareas/internal/server/refreshtokens"
	"gestortareas/internal/server/users"
)

// Mailer dispatches recovery-related emails through an external relay.
// Sending is synchronous; a relay failure fails the whole request.
type Mailer interface {
	SendPasswordRecovery(ctx context.Context, email, username, token string) error
	SendPasswordChanged(ctx context.Context, email, username string) error
}

// Service orchestrates the recovery flow. RequestRecovery never reveals
// whether an account exists; Verify and Reset enforce expiry and single use.
type Service struct {
	repo             Repository
	usersRepo        users.Repository
	refreshTokenRepo refreshtokens.Repository
	mailer           Mailer
	tokenValidity    time.Duration
	bcryptCost       int
}

func NewService(repo Repository, usersRepo users.Repository, refreshTokenRepo refreshtokens.Repository, mailer Mailer, cfg *config.Config) *Service {
	return &Service{
		repo:             repo,
		usersRepo:        usersRepo,
		refreshTokenRepo: refreshTokenRepo,
		mailer:           mailer,
		tokenValidity:    cfg.RecoveryTokenValidityDuration,
		bcryptCost:       cfg.BcryptCost,
	}
}

// RequestRecovery issues a new recovery token for the account behind email
// and mails it. It returns nil for unknown or inactive accounts so the
// endpoint stays non-enumerable; only infrastructure failures surface.
func (s *Service) RequestRecovery(ctx context.Context, email string) error {

	user, err := s.usersRepo.GetByEmail(ctx, users.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return common.ErrorInternal
	}

	if !user.IsActive {
		return nil
	}

	value, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}

	token := &Token{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		Token:   value,
		Expires: time.Now().Add(s.tokenValidity),
	}

	if err := s.repo.CreateSuperseding(ctx, token); err != nil {
		return common.ErrorInternal
	}

	if err := s.mailer.SendPasswordRecovery(ctx, user.Email, user.Username, value); err != nil {
		return common.ErrorInternal
	}

	return nil
}

// VerifyToken checks a token and returns the email of the account it
// belongs to. Unknown/used tokens yield ErrRecoveryTokenInvalid, expired
// ones ErrRecoveryTokenExpired.
func (s *Service) VerifyToken(ctx context.Context, token string) (string, error) {

	t, err := s.findValid(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.usersRepo.GetByID(ctx, t.UserID)
	if err != nil {
		return "", common.ErrorInternal
	}

	return user.Email, nil
}

// ResetPassword consumes a token: stores the new hash, marks the token
// used, revokes every session of the user, and mails a confirmation.
// A consumed token always fails a second reset.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {

	t, err := s.findValid(ctx, token)
	if err != nil {
		return err
	}

	user, err := s.usersRepo.GetByID(ctx, t.UserID)
	if err != nil {
		return common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return common.ErrorInternal
	}

	if err := s.usersRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return common.ErrorInternal
	}

	if err := s.repo.MarkUsed(ctx, t.ID); err != nil {
		return common.ErrorInternal
	}

	if err := s.refreshTokenRepo.DeleteAllForUser(ctx, user.ID); err != nil {
		return common.ErrorInternal
	}

	if err := s.mailer.SendPasswordChanged(ctx, user.Email, user.Username); err != nil {
		return common.ErrorInternal
	}

	return nil
}

func (s *Service) findValid(ctx context.Context, token string) (*Token, error) {
	t, err := s.repo.FindUnused(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRecoveryTokenInvalid
		}
		return nil, common.ErrorInternal
	}

	if t.Expired() {
		return nil, common.ErrRecoveryTokenExpired
	}

	return t, nil
}
