package pipeline

import (
	"context"
	"sync"

	"github.com/matzehuels/entitymap/pkg/errors"
)

// ErrSuperseded is returned for a request that a newer request on the same
// key replaced before it finished.
var ErrSuperseded = errors.New(errors.ErrCodeSuperseded, "superseded by a newer request")

// Tracker implements "latest request wins" per key.
//
// Each Begin issues a ticket with a sequence number higher than every
// earlier one and cancels the previous in-flight ticket for the same key.
// A caller checks its ticket before delivering a result and drops the result
// when a newer ticket exists.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	latest map[string]*Ticket
}

// Ticket identifies one tracked request.
type Ticket struct {
	Key string
	Seq uint64

	tracker *Tracker
	cancel  context.CancelCauseFunc
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]*Ticket)}
}

// Begin starts a request for key. The returned context is cancelled with
// cause ErrSuperseded once a newer request for key begins.
func (t *Tracker) Begin(ctx context.Context, key string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancelCause(ctx)

	t.mu.Lock()
	t.seq++
	tk := &Ticket{Key: key, Seq: t.seq, tracker: t, cancel: cancel}
	prev := t.latest[key]
	t.latest[key] = tk
	t.mu.Unlock()

	if prev != nil {
		prev.cancel(ErrSuperseded)
	}
	return ctx, tk
}

// Current reports whether tk is still the newest ticket for its key.
func (tk *Ticket) Current() bool {
	tk.tracker.mu.Lock()
	defer tk.tracker.mu.Unlock()
	return tk.tracker.latest[tk.Key] == tk
}

// Check returns ErrSuperseded when tk is no longer current.
func (tk *Ticket) Check() error {
	if !tk.Current() {
		return ErrSuperseded
	}
	return nil
}

// Finish releases tk. The newest ticket for a key is forgotten so the map
// does not grow with finished views.
func (t *Tracker) Finish(tk *Ticket) {
	if tk == nil {
		return
	}
	t.mu.Lock()
	if t.latest[tk.Key] == tk {
		delete(t.latest, tk.Key)
	}
	t.mu.Unlock()
	tk.cancel(context.Canceled)
}

// Latest returns the sequence number of the newest in-flight ticket for key,
// or zero.
func (t *Tracker) Latest(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tk, ok := t.latest[key]; ok {
		return tk.Seq
	}
	return 0
}

// Active returns the number of keys with an in-flight ticket.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.latest)
}
