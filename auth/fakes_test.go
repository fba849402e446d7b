package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/inkwell-go/config"
	"github.com/user/inkwell-go/gateway"
	"github.com/user/inkwell-go/logging"
)

const testSecret = "test-secret"

// memUserStore is an in-memory UserStore with the same uniqueness rules as
// the Postgres indexes.
type memUserStore struct {
	mu        sync.Mutex
	users     map[string]*User
	createErr error
	getErr    error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*User)}
}

func (m *memUserStore) Create(_ context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return nil, ErrDuplicateUser
		}
	}
	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()
	m.users[created.ID] = &created
	out := created
	return &out, nil
}

func (m *memUserStore) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *memUserStore) GetByID(_ context.Context, id string) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *memUserStore) GetByEmail(_ context.Context, email string) (*User, error) {
	return m.find(func(u *User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *memUserStore) GetByUsername(_ context.Context, username string) (*User, error) {
	return m.find(func(u *User) bool { return strings.EqualFold(u.Username, username) })
}

func (m *memUserStore) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := m.find(func(u *User) bool {
		return strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email)
	})
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		JWTSecret:         testSecret,
		SessionTTL:        2 * time.Hour,
		CookieName:        "auth_token",
		SameSite:          http.SameSiteLaxMode,
		ProtectedPrefixes: []string{"/api/uploads"},
		PublicPaths:       []string{"/login", "/register", "/healthz"},
		LoginPath:         "/login",
	}
}

func newTestCodec(t *testing.T, opts ...CodecOption) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, opts...)
	require.NoError(t, err)
	return codec
}

func newTestService(t *testing.T, store UserStore, protector gateway.Protector) *AuthService {
	t.Helper()
	return NewAuthService(store, NewBcryptHasher(bcrypt.MinCost), newTestCodec(t), testAuthConfig(), protector, logging.Nop())
}

// countingProtector records calls and answers with a fixed decision.
type countingProtector struct {
	mu       sync.Mutex
	calls    []gateway.Request
	decision gateway.Decision
	err      error
}

func (p *countingProtector) Protect(_ context.Context, req gateway.Request) (gateway.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	return p.decision, p.err
}

func (p *countingProtector) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// countingHasher wraps a real hasher and counts Verify calls.
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(plain, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(plain, hash)
}

func (h *countingHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifies
}
