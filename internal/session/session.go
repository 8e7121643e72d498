// Package session holds the authenticated-user state and notifies observers
// when it changes. It replaces ambient auth globals: whoever needs the
// current user is handed a *Manager explicitly.
package session

import (
	"sort"
	"sync"

	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

// ErrNoTokenSource is returned when a token is requested before the identity
// client has been wired in.
var ErrNoTokenSource = faults.New(faults.Unauthenticated, "no token source configured")

// TokenSource yields a bearer token for the current user. Implemented by the
// identity client; consumed by the platform client.
type TokenSource interface {
	Token() (string, error)
}

// Manager owns the current user and an observer list for auth-state changes.
// Safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	user      *models.User
	tokens    TokenSource
	observers map[int]func(*models.User)
	nextID    int
}

// NewManager returns a Manager with no user signed in.
func NewManager() *Manager {
	return &Manager{observers: make(map[int]func(*models.User))}
}

// Current returns the signed-in user, or nil.
func (m *Manager) Current() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Authenticated reports whether a user is signed in.
func (m *Manager) Authenticated() bool {
	return m.Current() != nil
}

// Set installs user as the current identity (nil on sign-out) and notifies
// observers in subscription order. Callbacks run synchronously on the
// caller's goroutine, outside the manager lock.
func (m *Manager) Set(user *models.User) {
	m.mu.Lock()
	m.user = user
	callbacks := make([]func(*models.User), 0, len(m.observers))
	keys := make([]int, 0, len(m.observers))
	for id := range m.observers {
		keys = append(keys, id)
	}
	// Map iteration order is random; observers were promised call order.
	sort.Ints(keys)
	for _, id := range keys {
		callbacks = append(callbacks, m.observers[id])
	}
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(user)
	}
}

// Subscribe registers fn to run on every auth-state change and returns an
// unsubscribe function. Unsubscribing twice is harmless.
func (m *Manager) Subscribe(fn func(*models.User)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// SetTokenSource wires the token provider for this session.
func (m *Manager) SetTokenSource(ts TokenSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = ts
}

// Token returns a fresh bearer token for the current user.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	ts := m.tokens
	m.mu.Unlock()
	if ts == nil {
		return "", ErrNoTokenSource
	}
	return ts.Token()
}
