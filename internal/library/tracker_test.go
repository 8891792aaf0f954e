package library

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// stubStore records progress writes and can be told to fail.
type stubStore struct {
	mu     sync.Mutex
	writes []int
	err    error
}

func (s *stubStore) UpdateProgress(id string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, index)
	return nil
}

func (s *stubStore) snapshot() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.writes...)
}

func waitForWrites(t *testing.T, s *stubStore, n int) []int {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := s.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d writes, got %v", n, s.snapshot())
	return nil
}

func TestTrackerFlushesAuthoritativePosition(t *testing.T) {
	store := &stubStore{}
	tr := NewTracker(store, "book", 0)
	defer tr.Close()

	tr.Record(42, false)

	got := waitForWrites(t, store, 1)
	if got[0] != 42 {
		t.Fatalf("wrote %v, want [42]", got)
	}
}

func TestTrackerSkipsRepeatedIndex(t *testing.T) {
	store := &stubStore{}
	tr := NewTracker(store, "book", 0)

	tr.Record(10, false)
	waitForWrites(t, store, 1)
	tr.Record(10, false)
	tr.Close()

	if got := store.snapshot(); len(got) != 1 {
		t.Fatalf("repeated index written: %v", got)
	}
}

func TestTrackerResumeIndexNotRewritten(t *testing.T) {
	store := &stubStore{}
	tr := NewTracker(store, "book", 7)

	tr.Record(7, false)
	tr.Close()

	if got := store.snapshot(); len(got) != 0 {
		t.Fatalf("resume index rewritten: %v", got)
	}
}

func TestTrackerLatestWinsOnCheckpoints(t *testing.T) {
	store := &stubStore{}
	tr := NewTracker(store, "book", 0)

	// The first checkpoint consumes the limiter's burst token; the rest pile
	// up in the mailbox. Close flushes whatever is newest.
	for i := 10; i <= 50; i += 10 {
		tr.Record(i, true)
	}
	tr.Close()

	got := store.snapshot()
	if len(got) == 0 {
		t.Fatal("no writes at all")
	}
	if last := got[len(got)-1]; last != 50 {
		t.Fatalf("last write %d, want 50 (writes %v)", last, got)
	}
	if len(got) > 2 {
		t.Fatalf("checkpoints not coalesced: %v", got)
	}
}

func TestTrackerSwallowsWriteFailures(t *testing.T) {
	store := &stubStore{err: errors.New("disk full")}
	tr := NewTracker(store, "book", 0)

	tr.Record(5, false)
	tr.Close()

	// Nothing to assert beyond "no panic, Close returns": failures are
	// absorbed and the session carries on.
	if got := store.snapshot(); len(got) != 0 {
		t.Fatalf("failing store recorded writes: %v", got)
	}
}

func TestTrackerCloseFlushesPending(t *testing.T) {
	store := &stubStore{}
	tr := NewTracker(store, "book", 0)

	tr.Record(10, true)
	waitForWrites(t, store, 1)
	tr.Record(20, true) // deferred by the limiter
	tr.Close()

	got := store.snapshot()
	if last := got[len(got)-1]; last != 20 {
		t.Fatalf("pending checkpoint lost on close: %v", got)
	}
}
