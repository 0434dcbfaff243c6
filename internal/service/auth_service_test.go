package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"query-desk/internal/repository"
	"query-desk/internal/validate"
)

func newTestAuthService(t *testing.T) (*authService, *fakeAccountRepo) {
	t.Helper()
	repo := &fakeAccountRepo{}
	svc := NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost)).(*authService)
	svc.now = stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return svc, repo
}

func TestAuthService_Register(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.False(t, account.CreatedAt.IsZero())
	assert.Empty(t, account.PasswordHash)

	stored := repo.stored("alice")
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestAuthService_RegisterDuplicates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@example.com", "pw")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "pw")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthService_RegisterInsertRaceMapsUniqueIndex(t *testing.T) {
	svc, repo := newTestAuthService(t)
	repo.createErr = errors.New("insert account: " + repository.ErrDuplicateEmail.Error())
	_, err := svc.Register(context.Background(), "bob", "bob@x.com", "pw")
	assert.ErrorIs(t, err, ErrStore)

	repo.createErr = repository.ErrDuplicateEmail
	_, err = svc.Register(context.Background(), "bob", "bob@x.com", "pw")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, repo := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "", "a@b.com", "pw")
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.Empty(t, repo.accounts)
}

func TestAuthService_RegisterRejectsPasswordBcryptCannotHash(t *testing.T) {
	svc, repo := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "bob", "bob@x.com", strings.Repeat("p", 80))
	assert.ErrorIs(t, err, validate.ErrValidation)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Empty(t, repo.accounts)
}

// recordingHasher cannot hash but still verifies, so the decoy path is observable.
type recordingHasher struct {
	verified []string
}

func (h *recordingHasher) Hash(string) (string, error) {
	return "", errors.New("entropy source unavailable")
}

func (h *recordingHasher) Verify(hash, password string) bool {
	h.verified = append(h.verified, hash)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func TestAuthService_DecoyHashFallsBackWhenHasherFails(t *testing.T) {
	hasher := &recordingHasher{}
	svc := NewAuthService(&fakeAccountRepo{}, hasher).(*authService)

	require.Equal(t, fallbackDecoyHash, svc.decoyHash)
	cost, err := bcrypt.Cost([]byte(svc.decoyHash))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)

	_, err = svc.Login(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, []string{fallbackDecoyHash}, hasher.verified)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "alice@example.com", "right")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "wrong")
	_, unknownUser := svc.Login(ctx, "nosuchuser", "x")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestAuthService_LoginUpdatesLastLogin(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "bob", "bob@x.com", "pw123")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "bob", "pw123")
	require.NoError(t, err)
	require.NotNil(t, first.LastLogin)
	assert.Empty(t, first.PasswordHash)
	assert.Equal(t, *first.LastLogin, *repo.stored("bob").LastLogin)

	second, err := svc.Login(ctx, "bob", "pw123")
	require.NoError(t, err)
	assert.True(t, second.LastLogin.After(*first.LastLogin))
	assert.Equal(t, *second.LastLogin, *repo.stored("bob").LastLogin)
}

func TestAuthService_LoginStoreFailureHidesCause(t *testing.T) {
	svc, repo := newTestAuthService(t)
	repo.lookupErr = errors.New("connection reset by peer")

	_, err := svc.Login(context.Background(), "bob", "pw")
	require.ErrorIs(t, err, ErrStore)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ListAccountsStripsHashes(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "bob"} {
		_, err := svc.Register(ctx, name, name+"@x.com", "pw")
		require.NoError(t, err)
	}

	accounts, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "alice", accounts[0].Username)
	assert.Equal(t, "bob", accounts[1].Username)
	for _, a := range accounts {
		assert.Empty(t, a.PasswordHash)
	}
}

func TestNewBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	h := NewBcryptHasher(0).(*bcryptHasher)
	assert.Equal(t, DefaultBcryptCost, h.cost)
}
