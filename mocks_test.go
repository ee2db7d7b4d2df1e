package userauth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	userauth "github.com/arkead/go-userauth"
)

// memoryStore is an in-memory UserStore for tests. Records are copied
// on the way in and out so engine-side mutations only become visible
// through Save, like a real store.
type memoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*userauth.User
}

var _ userauth.UserStore = (*memoryStore)(nil)

func newMemoryStore(users ...*userauth.User) *memoryStore {
	s := &memoryStore{users: make(map[uuid.UUID]*userauth.User)}
	for _, u := range users {
		s.users[u.ID] = cloneUser(u)
	}
	return s
}

func (s *memoryStore) GetByUsername(ctx context.Context, username string) (*userauth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, userauth.ErrNotFound
}

func (s *memoryStore) GetByID(ctx context.Context, id uuid.UUID) (*userauth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, userauth.ErrNotFound
}

func (s *memoryStore) Save(ctx context.Context, user *userauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *memoryStore) mustGet(t *testing.T, id uuid.UUID) *userauth.User {
	t.Helper()
	u, err := s.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func cloneUser(u *userauth.User) *userauth.User {
	clone := *u
	return &clone
}

// quietLogger discards everything, for tests that exercise error paths.
type quietLogger struct{}

func (quietLogger) Debug(format string, args ...any) {}
func (quietLogger) Info(format string, args ...any)  {}
func (quietLogger) Warn(format string, args ...any)  {}
func (quietLogger) Error(format string, args ...any) {}

// conflictStore rejects every write with a repository-style conflict.
type conflictStore struct {
	memoryStore
}

func (s *conflictStore) Save(ctx context.Context, user *userauth.User) error {
	return goerrors.New("username or email already taken", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict)
}

// failingStore simulates an unreachable backend.
type failingStore struct{}

var errStoreDown = errors.New("connection refused")

func (failingStore) GetByUsername(ctx context.Context, username string) (*userauth.User, error) {
	return nil, errStoreDown
}

func (failingStore) GetByID(ctx context.Context, id uuid.UUID) (*userauth.User, error) {
	return nil, errStoreDown
}

func (failingStore) Save(ctx context.Context, user *userauth.User) error {
	return errStoreDown
}

func testConfig() userauth.Config {
	return userauth.Config{
		SigningKey:        []byte("test-signing-key"),
		Issuer:            "userauth-test",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTokenTTL:   24 * time.Hour,
		MinPasswordLength: 4,
		BcryptCost:        bcrypt.MinCost,
	}
}

func hashPassword(t *testing.T, cfg userauth.Config, password string) string {
	t.Helper()
	hash, err := userauth.NewPasswordHasher(cfg).Hash(password)
	require.NoError(t, err)
	return hash
}

// testUser builds an activated account with the flag cleared, ready to
// log in.
func testUser(t *testing.T, cfg userauth.Config, username, password string, roles userauth.RoleSet) *userauth.User {
	t.Helper()
	return &userauth.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashPassword(t, cfg, password),
		Roles:        roles,
		State:        userauth.StateActivated,
	}
}
