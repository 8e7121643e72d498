// Package stubapi is an in-memory stand-in for the two external services the
// client consumes: the identity provider and the events platform API. It
// exists so the client can be run and integration-tested without real
// backends; nothing here persists past the process.
package stubapi

import (
	"sort"
	"sync"
	"time"

	"eventhub/pkg/models"
)

// account is a registered identity, stub-side.
type account struct {
	UID         string
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

// Store holds all stub state behind one mutex.
type Store struct {
	mu       sync.Mutex
	events   map[string]models.EventRecord
	joins    map[string]models.JoinRecord // keyed uid + "/" + eventID
	accounts map[string]*account          // keyed by uid
	byEmail  map[string]string            // email -> uid
	refresh  map[string]string            // refresh token -> uid
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		events:   make(map[string]models.EventRecord),
		joins:    make(map[string]models.JoinRecord),
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		refresh:  make(map[string]string),
	}
}

func (s *Store) putEvent(e models.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
}

func (s *Store) getEvent(id string) (models.EventRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e, ok
}

func (s *Store) deleteEvent(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, id)
}

// listEvents returns events matching the filter, sorted ascending by date.
// creatorID narrows to one creator when non-empty.
func (s *Store) listEvents(eventType models.EventType, creatorID string) []models.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.EventRecord, 0, len(s.events))
	for _, e := range s.events {
		if eventType != "" && e.EventType != eventType {
			continue
		}
		if creatorID != "" && e.CreatorID != creatorID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// addJoin records a join. It reports false when the (user, event) pair
// already exists; the pair is unique and append-only.
func (s *Store) addJoin(uid, eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uid + "/" + eventID
	if _, ok := s.joins[key]; ok {
		return false
	}
	s.joins[key] = models.JoinRecord{UserID: uid, EventID: eventID, JoinedAt: time.Now().UTC()}
	return true
}

// joinedEvents returns the events a user has joined, sorted by date.
func (s *Store) joinedEvents(uid string) []models.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.EventRecord
	for _, j := range s.joins {
		if j.UserID != uid {
			continue
		}
		if e, ok := s.events[j.EventID]; ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (s *Store) addAccount(a *account) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[a.Email]; taken {
		return false
	}
	cp := *a
	s.accounts[a.UID] = &cp
	s.byEmail[a.Email] = a.UID
	return true
}

// Account lookups return copies so handlers never share the stored struct.
func (s *Store) accountByEmail(email string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.byEmail[email]
	if !ok {
		return nil, false
	}
	cp := *s.accounts[uid]
	return &cp, true
}

func (s *Store) accountByUID(uid string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return nil, false
	}
	cp := *a
	return &cp, true
}

// updateAccount patches an account's profile fields. Empty values mean the
// field is not being changed. Returns a copy of the result.
func (s *Store) updateAccount(uid, displayName, photoURL string) (*account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[uid]
	if !ok {
		return nil, false
	}
	if displayName != "" {
		a.DisplayName = displayName
	}
	if photoURL != "" {
		a.PhotoURL = photoURL
	}
	cp := *a
	return &cp, true
}

func (s *Store) saveRefreshToken(token, uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = uid
}

func (s *Store) uidForRefreshToken(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.refresh[token]
	return uid, ok
}
