package library

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/haasele/focus-reader/internal/logging"
)

// ProgressStore is the slice of Store the tracker needs. Tests substitute a
// recording stub.
type ProgressStore interface {
	UpdateProgress(id string, index int) error
}

// checkpointInterval paces the periodic mid-playback saves. Authoritative
// positions (pause, jump, close) are never delayed by it.
const checkpointInterval = 2 * time.Second

// Tracker bridges playback position changes to the store without ever making
// playback wait on a write. Positions land in a latest-wins mailbox; a single
// worker goroutine drains it, rate-limits periodic checkpoints, skips writes
// that would repeat the last stored index, and swallows store errors. The
// in-memory position is authoritative for the live session either way.
type Tracker struct {
	store   ProgressStore
	bookID  string
	limiter *rate.Limiter

	mu       sync.Mutex
	pending  int
	queued   bool
	urgent   bool
	lastSent int

	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker starts a tracker for one book. lastKnown is the index already
// stored, so resuming a book does not immediately rewrite it.
func NewTracker(store ProgressStore, bookID string, lastKnown int) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		store:    store,
		bookID:   bookID,
		limiter:  rate.NewLimiter(rate.Every(checkpointInterval), 1),
		lastSent: lastKnown,
		wake:     make(chan struct{}, 1),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

// Record notes a new position. checkpoint marks a periodic mid-playback save,
// which may be deferred by the rate limiter; a non-checkpoint record is an
// authoritative position and flushes as soon as the worker gets to it.
// Never blocks.
func (t *Tracker) Record(index int, checkpoint bool) {
	t.mu.Lock()
	t.pending = index
	t.queued = true
	if !checkpoint {
		t.urgent = true
	}
	t.mu.Unlock()

	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Close flushes any pending position and stops the worker.
func (t *Tracker) Close() {
	t.cancel()
	<-t.done
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)
	for {
		select {
		case <-ctx.Done():
			if index, _, ok := t.take(); ok {
				t.write(index)
			}
			return
		case <-t.wake:
		}

		for {
			index, urgent, ok := t.take()
			if !ok {
				break
			}
			if !urgent {
				if err := t.limiter.Wait(ctx); err != nil {
					// Shutting down; this position still gets written.
				}
			}
			t.write(index)
		}
	}
}

// take empties the mailbox. The position may have been superseded while the
// worker waited on the limiter; the next loop iteration picks that up.
func (t *Tracker) take() (index int, urgent, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.queued {
		return 0, false, false
	}
	index, urgent = t.pending, t.urgent
	t.queued, t.urgent = false, false
	return index, urgent, true
}

func (t *Tracker) write(index int) {
	if index == t.lastSent {
		return
	}
	if err := t.store.UpdateProgress(t.bookID, index); err != nil {
		logging.Debug("progress write failed", "book", t.bookID, "index", index, "err", err)
		return
	}
	t.lastSent = index
}
