package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
	_ "github.com/odyssey-erp/odyssey-auth/testing"
)

var testSecret = []byte("test-secret")

func fastParams() auth.HashParams {
	return auth.HashParams{N: 16, R: 1, P: 1, KeyLen: 32, SaltLen: 8}
}

func newTestHasher(t *testing.T) *auth.ScryptHasher {
	t.Helper()
	hasher, err := auth.NewScryptHasher(auth.HasherOptions{Params: fastParams()})
	require.NoError(t, err)
	return hasher
}

func newTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(testSecret, "odyssey-auth-test")
	require.NoError(t, err)
	return issuer
}

type stubRecorder struct {
	mu     sync.Mutex
	events map[string]int
}

func (r *stubRecorder) AuthEvent(event, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.events == nil {
		r.events = make(map[string]int)
	}
	r.events[event+":"+outcome]++
}

func (r *stubRecorder) count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[key]
}

type stubPublisher struct {
	mu    sync.Mutex
	users []string
	err   error
}

func (p *stubPublisher) UserRegistered(_ context.Context, userID, _, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	return p.err
}

type memoryRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// failingRepo returns err from every call.
type failingRepo struct {
	err error
}

func (f failingRepo) FindByEmail(context.Context, string) (*auth.User, error) { return nil, f.err }
func (f failingRepo) FindByID(context.Context, string) (*auth.User, error)    { return nil, f.err }
func (f failingRepo) Create(context.Context, auth.NewUser) (*auth.User, error) {
	return nil, f.err
}

// racingRepo reports every email as free but rejects inserts, as happens
// when a concurrent registration wins the unique index.
type racingRepo struct{}

func (racingRepo) FindByEmail(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}
func (racingRepo) FindByID(context.Context, string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}
func (racingRepo) Create(context.Context, auth.NewUser) (*auth.User, error) {
	return nil, shared.ErrConflict
}
