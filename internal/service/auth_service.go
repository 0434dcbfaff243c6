package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"query-desk/internal/domain"
	"query-desk/internal/repository"
	"query-desk/internal/validate"
)

// AuthService describes account registration and login.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.Account, error)
	Login(ctx context.Context, username, password string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

type authService struct {
	accounts repository.AccountRepository
	hasher   PasswordHasher
	// decoyHash is verified against when the username is unknown so both failure paths pay
	// for one hash comparison.
	decoyHash string
	now       func() time.Time
}

// fallbackDecoyHash is a well formed cost 10 bcrypt hash, used when the hasher cannot produce
// a decoy of its own.
const fallbackDecoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func NewAuthService(accounts repository.AccountRepository, hasher PasswordHasher) AuthService {
	decoy, err := hasher.Hash("decoy-password")
	if err != nil || decoy == "" {
		decoy = fallbackDecoyHash
	}
	return &authService{
		accounts:  accounts,
		hasher:    hasher,
		decoyHash: decoy,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validate.Registration(username, email, password); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError("lookup username", err)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError("lookup email", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	// the unique indexes close the gap between the lookups above and this insert
	if _, err := s.accounts.Create(ctx, account); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		default:
			return nil, storeError("create account", err)
		}
	}

	return sanitizeAccount(account), nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if err := validate.Login(username, password); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(s.decoyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("lookup username", err)
	}

	if !s.hasher.Verify(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("update last login", err)
	}
	account.LastLogin = &now

	return sanitizeAccount(account), nil
}

func (s *authService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	return sanitizeAccounts(accounts), nil
}

func sanitizeAccount(account *domain.Account) *domain.Account {
	if account == nil {
		return nil
	}
	clean := *account
	clean.PasswordHash = ""
	return &clean
}

func sanitizeAccounts(accounts []domain.Account) []domain.Account {
	out := make([]domain.Account, len(accounts))
	for i := range accounts {
		out[i] = accounts[i]
		out[i].PasswordHash = ""
	}
	return out
}
