package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

/* ──────────────────────────────── stubs ──────────────────────────────── */

// memUsers is an in-memory UserStore that copies documents on every read and
// write, mirroring the isolation a real store gives.
type memUsers struct {
	mu    sync.Mutex
	users map[string]model.User
	saves int
	err   error
}

func newMemUsers() *memUsers { return &memUsers{users: make(map[string]model.User)} }

func cloneUser(u model.User) model.User {
	u.Addresses = append([]model.Address{}, u.Addresses...)
	return u
}

func (m *memUsers) FindByEmailOrUsername(_ context.Context, email, username string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) || u.Username == username {
			return cloneUser(u), nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (m *memUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return model.User{}, repository.ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (m *memUsers) Save(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.User{}, m.err
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Username == u.Username {
			return model.User{}, repository.ErrUserExists
		}
	}
	m.saves++
	u.UpdatedAt = time.Now().UTC()
	m.users[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

// memRevocations is an in-memory RevocationStore with a controllable clock.
type memRevocations struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
	err     error
}

func newMemRevocations(now func() time.Time) *memRevocations {
	return &memRevocations{entries: make(map[string]time.Time), now: now}
}

func (m *memRevocations) Revoke(_ context.Context, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries[token] = m.now().Add(ttl)
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	exp, ok := m.entries[token]
	return ok && m.now().Before(exp), nil
}

// recordingNotifier captures published users on a channel.
type recordingNotifier struct {
	created chan model.User
	err     error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{created: make(chan model.User, 4)}
}

func (n *recordingNotifier) UserCreated(_ context.Context, u model.User) error {
	n.created <- u
	return n.err
}

// testClock is a manually advanced time source shared by codec and stores.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
