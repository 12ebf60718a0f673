package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gestortareas/internal/common"
	"gestortareas/internal/server/auth"
	"gestortareas/internal/server/config"
	"gestortareas/internal/server/refreshtokens"
)

// --- in-memory fakes ---

type fakeUsersRepo struct {
	byID      map[string]*User
	createErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: make(map[string]*User)}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *User) (*User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*User, error) {
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, u *User) (*User, error) {
	stored, ok := f.byID[u.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	stored.Username = u.Username
	stored.Email = u.Email
	stored.FirstNames = u.FirstNames
	stored.LastNames = u.LastNames
	stored.UpdatedAt = time.Now()
	cp := *stored
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	stored, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.PasswordHash = passwordHash
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUsersRepo) Touch(ctx context.Context, id string) error {
	if stored, ok := f.byID[id]; ok {
		stored.UpdatedAt = time.Now()
	}
	return nil
}

type fakeRefreshRepo struct {
	tokens map[string]*refreshtokens.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*refreshtokens.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	f.tokens[token] = &refreshtokens.RefreshToken{
		UserID:    userID,
		Token:     token,
		Expires:   time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*refreshtokens.RefreshToken, error) {
	if rt, ok := f.tokens[token]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	for t, rt := range f.tokens {
		if rt.UserID == userID {
			delete(f.tokens, t)
		}
	}
	return nil
}

func (f *fakeRefreshRepo) DeleteExpiredForUser(ctx context.Context, userID string) error {
	for t, rt := range f.tokens {
		if rt.UserID == userID && rt.Expires.Before(time.Now()) {
			delete(f.tokens, t)
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUsersRepo, *fakeRefreshRepo) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:                    "access-key",
		JWTRefreshSecret:             "refresh-key",
		AccessTokenValidityDuration:  30 * time.Minute,
		RefreshTokenValidityDuration: 7 * 24 * time.Hour,
		BcryptCost:                   bcrypt.MinCost, // keep tests fast
	}
	ur := newFakeUsersRepo()
	rr := newFakeRefreshRepo()
	return NewService(ur, rr, cfg), ur, rr
}

func register(t *testing.T, s *Service) (*User, *TokenPair) {
	t.Helper()
	user, pair, err := s.Register(context.Background(), "ana", "Ana@X.com", "Passw0rd", "Ana", "García")
	require.NoError(t, err)
	return user, pair
}

// --- tests ---

func TestRegister_HashesPasswordAndIssuesTokens(t *testing.T) {
	s, ur, rr := newTestService(t)

	user, pair := register(t, s)

	assert.Equal(t, "ana@x.com", user.Email, "email must be normalized to lowercase")
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored := ur.byID[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Passw0rd", stored.PasswordHash, "plaintext must never be persisted")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Passw0rd")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("otherpass")))

	_, err := rr.Find(context.Background(), pair.RefreshToken)
	assert.NoError(t, err, "refresh token must be persisted")
}

func TestRegister_DuplicateEmailAndUsername(t *testing.T) {
	s, _, _ := newTestService(t)
	register(t, s)

	_, _, err := s.Register(context.Background(), "otra", "ANA@x.com", "Passw0rd", "Otra", "Persona")
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, _, err = s.Register(context.Background(), "ana", "otra@x.com", "Passw0rd", "Otra", "Persona")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestRegister_InsertRaceSurfacesConflict(t *testing.T) {
	s, ur, _ := newTestService(t)

	// the pre-checks see nothing, but a concurrent registration wins the
	// insert and the repository reports the constraint violation
	ur.createErr = common.ErrEmailTaken
	_, _, err := s.Register(context.Background(), "ana", "ana@x.com", "Passw0rd", "Ana", "García")
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	ur.createErr = common.ErrUsernameTaken
	_, _, err = s.Register(context.Background(), "ana", "ana@x.com", "Passw0rd", "Ana", "García")
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	// anything else stays an opaque internal error
	ur.createErr = errors.New("connection reset")
	_, _, err = s.Register(context.Background(), "ana", "ana@x.com", "Passw0rd", "Ana", "García")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestLogin_Success(t *testing.T) {
	s, _, _ := newTestService(t)
	register(t, s)

	user, pair, err := s.Login(context.Background(), " ANA@x.com ", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "ana", user.Username)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
}

func TestLogin_BadCredentials(t *testing.T) {
	s, ur, _ := newTestService(t)
	user, _ := register(t, s)

	_, _, err := s.Login(context.Background(), "ana@x.com", "wrongpass")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, _, err = s.Login(context.Background(), "nadie@x.com", "Passw0rd")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	ur.byID[user.ID].IsActive = false
	_, _, err = s.Login(context.Background(), "ana@x.com", "Passw0rd")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_PurgesExpiredSessions(t *testing.T) {
	s, _, rr := newTestService(t)
	user, _ := register(t, s)

	require.NoError(t, rr.Create(context.Background(), user.ID, "stale-token", -time.Hour))

	_, _, err := s.Login(context.Background(), "ana@x.com", "Passw0rd")
	require.NoError(t, err)

	_, err = rr.Find(context.Background(), "stale-token")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRefreshAccessToken_Success(t *testing.T) {
	s, _, _ := newTestService(t)
	user, pair := register(t, s)

	accessToken, err := s.RefreshAccessToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken(accessToken, []byte("access-key"))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestRefreshAccessToken_DoesNotRotateRefreshToken(t *testing.T) {
	s, _, rr := newTestService(t)
	_, pair := register(t, s)

	_, err := s.RefreshAccessToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	_, err = rr.Find(context.Background(), pair.RefreshToken)
	assert.NoError(t, err, "refresh token must survive a refresh")

	_, err = s.RefreshAccessToken(context.Background(), pair.RefreshToken)
	assert.NoError(t, err, "the same refresh token must keep working")
}

func TestRefreshAccessToken_UnknownToken(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.RefreshAccessToken(context.Background(), "never-issued")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestRefreshAccessToken_ExpiredRowIsDeleted(t *testing.T) {
	s, _, rr := newTestService(t)
	user, _ := register(t, s)

	tok, err := auth.GenerateRefreshToken(user.ID, []byte("refresh-key"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, rr.Create(context.Background(), user.ID, tok, -time.Minute))

	_, err = s.RefreshAccessToken(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	_, err = rr.Find(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrorNotFound, "stale row must be purged")
}

func TestRefreshAccessToken_BadSignatureIsDeleted(t *testing.T) {
	s, _, rr := newTestService(t)
	user, _ := register(t, s)

	forged, err := auth.GenerateRefreshToken(user.ID, []byte("other-key"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, rr.Create(context.Background(), user.ID, forged, time.Hour))

	_, err = s.RefreshAccessToken(context.Background(), forged)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = rr.Find(context.Background(), forged)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestRefreshAccessToken_InactiveUser(t *testing.T) {
	s, ur, _ := newTestService(t)
	user, pair := register(t, s)

	ur.byID[user.ID].IsActive = false

	_, err := s.RefreshAccessToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogout_IsIdempotent(t *testing.T) {
	s, _, rr := newTestService(t)
	_, pair := register(t, s)

	require.NoError(t, s.Logout(context.Background(), pair.RefreshToken))
	_, err := rr.Find(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.NoError(t, s.Logout(context.Background(), pair.RefreshToken), "second logout must not fail")
}

func TestLogoutAll_KillsEverySession(t *testing.T) {
	s, _, _ := newTestService(t)
	user, pair1 := register(t, s)

	_, pair2, err := s.Login(context.Background(), "ana@x.com", "Passw0rd")
	require.NoError(t, err)

	require.NoError(t, s.LogoutAll(context.Background(), user.ID))

	_, err = s.RefreshAccessToken(context.Background(), pair1.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, err = s.RefreshAccessToken(context.Background(), pair2.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestChangePassword(t *testing.T) {
	s, _, _ := newTestService(t)
	user, pair := register(t, s)

	err := s.ChangePassword(context.Background(), user.ID, "wrongpass", "NewPassw0rd")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	require.NoError(t, s.ChangePassword(context.Background(), user.ID, "Passw0rd", "NewPassw0rd"))

	// old sessions are dead
	_, err = s.RefreshAccessToken(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	// old password no longer works, new one does
	_, _, err = s.Login(context.Background(), "ana@x.com", "Passw0rd")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	_, _, err = s.Login(context.Background(), "ana@x.com", "NewPassw0rd")
	assert.NoError(t, err)
}

func TestUpdateProfile_PartialAndUnique(t *testing.T) {
	s, _, _ := newTestService(t)
	user, _ := register(t, s)

	_, _, err := s.Register(context.Background(), "benito", "benito@x.com", "Passw0rd", "Benito", "Pérez")
	require.NoError(t, err)

	taken := "benito"
	_, err = s.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{Username: &taken})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)

	takenMail := "Benito@x.com"
	_, err = s.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{Email: &takenMail})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	newNames := "Ana María"
	updated, err := s.UpdateProfile(context.Background(), user.ID, UpdateProfileParams{FirstNames: &newNames})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", updated.FirstNames)
	assert.Equal(t, "ana", updated.Username, "unsupplied fields stay unchanged")
	assert.Equal(t, "ana@x.com", updated.Email)
}

func TestGetProfile_NotFound(t *testing.T) {
	s, _, _ := newTestService(t)

	_, err := s.GetProfile(context.Background(), "missing-id")
	assert.True(t, errors.Is(err, common.ErrorNotFound))
}
