package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// AccountService registers users and checks their passwords. Passwords are
// stored as salted bcrypt digests.
type AccountService struct {
	store  CredentialStore
	cost   int
	logger *log.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAccountService(store CredentialStore, cost int, logger *log.Logger) *AccountService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AccountService{
		store:  store,
		cost:   cost,
		logger: logger.WithComponent(log.ComponentAccount),
	}
}

// Register creates a user. It returns core.ErrUsernameTaken when the name
// is already registered.
func (s *AccountService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, core.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			s.logger.InfoContext(ctx, "Registration rejected, username taken", log.FieldUsername, username)
			return 0, core.ErrUsernameTaken
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", log.FieldOperation, log.OpRegister, log.FieldUserID, id, log.FieldUsername, username)
	return id, nil
}

// Authenticate returns the id of the user whose stored digest matches
// password. Unknown users and wrong passwords both yield core.ErrAuthFailed.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return 0, core.ErrInvalidCredentials
	}

	id, hash, err := s.store.GetCredentials(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		// Spend the same bcrypt work as for a real account.
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		s.logger.InfoContext(ctx, "Authentication failed", log.FieldOperation, log.OpLogin, log.FieldUsername, username)
		return 0, core.ErrAuthFailed
	}
	if err != nil {
		return 0, fmt.Errorf("load credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.logger.InfoContext(ctx, "Authentication failed", log.FieldOperation, log.OpLogin, log.FieldUsername, username)
		return 0, core.ErrAuthFailed
	}

	s.logger.DebugContext(ctx, "User authenticated", log.FieldUserID, id)
	return id, nil
}

func (s *AccountService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("fintrack-placeholder"), s.cost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
