package join

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eventhub/internal/collection"
	"eventhub/internal/session"
	"eventhub/pkg/faults"
	"eventhub/pkg/models"
)

// blockingSubmitter counts calls and holds each one until released.
type blockingSubmitter struct {
	calls   int64
	release chan struct{}
	err     error
}

func (s *blockingSubmitter) Join(ctx context.Context, eventID string) error {
	atomic.AddInt64(&s.calls, 1)
	if s.release != nil {
		<-s.release
	}
	return s.err
}

func loggedIn() *session.Manager {
	m := session.NewManager()
	m.Set(&models.User{UID: "u1", Email: "u1@example.com"})
	return m
}

func TestJoinUnauthenticated(t *testing.T) {
	sub := &blockingSubmitter{}
	c := NewCoordinator(sub, session.NewManager())

	err := c.Join(context.Background(), "e1")
	if !faults.Is(err, faults.Unauthenticated) {
		t.Fatalf("expected unauthenticated fault, got %v", err)
	}
	if atomic.LoadInt64(&sub.calls) != 0 {
		t.Error("unauthenticated join must not reach the network")
	}
	if got := c.StateOf("e1"); got != NotJoined {
		t.Errorf("expected NotJoined, got %s", got)
	}
}

func TestJoinSuccessAnnotatesViews(t *testing.T) {
	sub := &blockingSubmitter{}
	c := NewCoordinator(sub, loggedIn())

	base := collection.NewView()
	base.SetEvents([]models.EventRecord{
		{ID: "e1", EventType: models.EventMusicFestival, Date: time.Now().Add(time.Hour)},
	})

	if err := c.Join(context.Background(), "e1", base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.StateOf("e1"); got != Joined {
		t.Errorf("expected Joined, got %s", got)
	}
	items := base.Events()
	if len(items) != 1 || !items[0].HasJoined {
		t.Error("hasJoined annotation not written to view")
	}

	// Terminal: a second attempt is refused locally.
	if err := c.Join(context.Background(), "e1", base); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("expected ErrAlreadyJoined, got %v", err)
	}
	if atomic.LoadInt64(&sub.calls) != 1 {
		t.Errorf("expected exactly 1 network call, got %d", sub.calls)
	}
}

func TestJoinFailureRollsBack(t *testing.T) {
	sub := &blockingSubmitter{err: faults.New(faults.Network, "request failed")}
	c := NewCoordinator(sub, loggedIn())

	view := collection.NewView()
	view.SetEvents([]models.EventRecord{
		{ID: "e1", EventType: models.EventMusicFestival, Date: time.Now().Add(time.Hour)},
	})

	err := c.Join(context.Background(), "e1", view)
	if !faults.Is(err, faults.Network) {
		t.Fatalf("expected network fault, got %v", err)
	}

	if got := c.StateOf("e1"); got != NotJoined {
		t.Errorf("expected rollback to NotJoined, got %s", got)
	}
	if view.Events()[0].HasJoined {
		t.Error("failed join must not annotate the view")
	}

	// The in-flight marker was released: retry reaches the network again.
	sub.err = nil
	if err := c.Join(context.Background(), "e1", view); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if atomic.LoadInt64(&sub.calls) != 2 {
		t.Errorf("expected 2 network calls, got %d", sub.calls)
	}
}

func TestJoinMutualExclusion(t *testing.T) {
	sub := &blockingSubmitter{release: make(chan struct{})}
	c := NewCoordinator(sub, loggedIn())

	firstDone := make(chan error, 1)
	go func() { firstDone <- c.Join(context.Background(), "e1") }()

	// Wait for the first join to be in flight.
	deadline := time.After(2 * time.Second)
	for c.StateOf("e1") != Joining {
		select {
		case <-deadline:
			t.Fatal("first join never entered Joining")
		case <-time.After(time.Millisecond):
		}
	}

	// Second attempt is refused structurally, without a network call.
	if err := c.Join(context.Background(), "e1"); !errors.Is(err, ErrJoinInFlight) {
		t.Fatalf("expected ErrJoinInFlight, got %v", err)
	}

	close(sub.release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	if got := atomic.LoadInt64(&sub.calls); got != 1 {
		t.Errorf("expected exactly 1 network call, got %d", got)
	}
	if got := c.StateOf("e1"); got != Joined {
		t.Errorf("expected Joined, got %s", got)
	}
}

func TestJoinDifferentEventsIndependent(t *testing.T) {
	sub := &blockingSubmitter{release: make(chan struct{})}
	c := NewCoordinator(sub, loggedIn())

	var wg sync.WaitGroup
	for _, id := range []string{"e1", "e2", "e3"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := c.Join(context.Background(), id); err != nil {
				t.Errorf("join %s: %v", id, err)
			}
		}(id)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&sub.calls) != 3 {
		select {
		case <-deadline:
			t.Fatalf("expected 3 concurrent calls, got %d", atomic.LoadInt64(&sub.calls))
		case <-time.After(time.Millisecond):
		}
	}
	close(sub.release)
	wg.Wait()
}

func TestMarkJoinedSeedsTerminalState(t *testing.T) {
	sub := &blockingSubmitter{}
	c := NewCoordinator(sub, loggedIn())

	c.MarkJoined("e1")
	if err := c.Join(context.Background(), "e1"); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("expected ErrAlreadyJoined, got %v", err)
	}
	if atomic.LoadInt64(&sub.calls) != 0 {
		t.Error("seeded joined state must prevent network calls")
	}
}
