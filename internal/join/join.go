// Package join reconciles a user's intent to join an event with server
// confirmation: one in-flight request per event, rollback on failure, and a
// terminal Joined state per (user, event) pair.
package join

import (
	"context"
	"sync"

	"eventhub/internal/collection"
	"eventhub/internal/session"
	"eventhub/pkg/faults"
)

// ErrJoinInFlight means a join for this event is already outstanding; the
// second attempt never reaches the network.
var ErrJoinInFlight = faults.New(faults.Validation, "join already in progress for this event")

// ErrAlreadyJoined means the pair reached the terminal Joined state earlier
// in this process.
var ErrAlreadyJoined = faults.New(faults.Validation, "event already joined")

// Submitter performs the join-confirmation call. Implemented by the platform
// client.
type Submitter interface {
	Join(ctx context.Context, eventID string) error
}

// Coordinator serializes join attempts per event id. The in-flight set is
// process-local, scoped to the views currently rendered.
type Coordinator struct {
	api     Submitter
	session *session.Manager

	mu       sync.Mutex
	inFlight map[string]bool
	joined   map[string]bool
}

// NewCoordinator returns a Coordinator submitting through api on behalf of
// the given session.
func NewCoordinator(api Submitter, sess *session.Manager) *Coordinator {
	return &Coordinator{
		api:      api,
		session:  sess,
		inFlight: make(map[string]bool),
		joined:   make(map[string]bool),
	}
}

// Join runs the NotJoined -> Joining -> Joined transition for eventID.
//
// While the request is outstanding, further joins for the same event are
// refused with ErrJoinInFlight before any network activity. On success the
// hasJoined annotation is written through to both tiers of every view passed
// in, and the pair is terminal: later attempts return ErrAlreadyJoined. On
// failure nothing is retained and the caller may try again. The in-flight
// marker is released on every exit path.
func (c *Coordinator) Join(ctx context.Context, eventID string, views ...*collection.View) error {
	if !c.session.Authenticated() {
		return faults.New(faults.Unauthenticated, "login required to join an event")
	}

	c.mu.Lock()
	if c.joined[eventID] {
		c.mu.Unlock()
		return ErrAlreadyJoined
	}
	if c.inFlight[eventID] {
		c.mu.Unlock()
		return ErrJoinInFlight
	}
	c.inFlight[eventID] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, eventID)
		c.mu.Unlock()
	}()

	if err := c.api.Join(ctx, eventID); err != nil {
		// Rollback: no partial state, the attempt is over.
		return err
	}

	c.mu.Lock()
	c.joined[eventID] = true
	c.mu.Unlock()

	for _, v := range views {
		v.MarkJoined(eventID)
	}
	return nil
}

// State reports the current join state for an event id.
type State int

const (
	NotJoined State = iota
	Joining
	Joined
)

func (s State) String() string {
	switch s {
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	default:
		return "not_joined"
	}
}

// StateOf returns the coordinator's view of the pair's state.
func (c *Coordinator) StateOf(eventID string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.joined[eventID]:
		return Joined
	case c.inFlight[eventID]:
		return Joining
	default:
		return NotJoined
	}
}

// MarkJoined seeds the terminal state for events the server already reports
// as joined, so listings fetched from joinedEvents refuse re-joins locally.
func (c *Coordinator) MarkJoined(eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[eventID] = true
}
