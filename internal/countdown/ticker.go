package countdown

import (
	"sync"
	"time"
)

// Ticker recomputes the countdown to a target once per interval and delivers
// each result to a callback. Delivery stops on its own once the target is
// elapsed; Stop stops it earlier. The callback runs on the ticker's goroutine
// and is never invoked again after Stop returns.
type Ticker struct {
	target   time.Time
	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option adjusts a Ticker. Used by tests to compress time.
type Option func(*Ticker)

// WithInterval overrides the one-second tick interval.
func WithInterval(d time.Duration) Option {
	return func(t *Ticker) { t.interval = d }
}

// WithNow overrides the clock source.
func WithNow(now func() time.Time) Option {
	return func(t *Ticker) { t.now = now }
}

// Start begins ticking toward target, delivering each Remaining to onTick.
// The first delivery happens after one interval, matching a once-per-second
// display refresh. The final delivery is the Elapsed value, after which the
// ticker releases its timer and exits.
//
// The caller owns the returned Ticker and must call Stop when the consuming
// view goes away, or a leaked timer would keep writing into it.
func Start(target time.Time, onTick func(Remaining), opts ...Option) *Ticker {
	t := &Ticker{
		target:   target,
		interval: time.Second,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	go t.run(onTick)
	return t
}

func (t *Ticker) run(onTick func(Remaining)) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			r := Compute(t.target, t.now())
			// Check stop again: Stop may have won the race while the
			// tick was being handled.
			select {
			case <-t.stop:
				return
			default:
			}
			onTick(r)
			if r.Elapsed {
				return
			}
		}
	}
}

// Stop cancels the ticker. It is idempotent, safe to call from any
// goroutine, and blocks until no further callbacks will run. It must not be
// called from inside the onTick callback.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
