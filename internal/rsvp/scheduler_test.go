package rsvp

import (
	"sync"
	"testing"
	"time"
)

// saveRecorder captures OnSave calls for assertions.
type saveRecorder struct {
	mu    sync.Mutex
	calls []saveCall
}

type saveCall struct {
	index      int
	checkpoint bool
}

func (r *saveRecorder) hook() func(int, bool) {
	return func(index int, checkpoint bool) {
		r.mu.Lock()
		r.calls = append(r.calls, saveCall{index, checkpoint})
		r.mu.Unlock()
	}
}

func (r *saveRecorder) snapshot() []saveCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]saveCall(nil), r.calls...)
}

func nWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = "word"
	}
	return words
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("no event within %v", timeout)
		return Event{}
	}
}

func TestPlaybackRunsToCompletion(t *testing.T) {
	rec := &saveRecorder{}
	s := NewScheduler(nWords(25), Options{WPM: 1200, OnSave: rec.hook()})
	defer s.Close()

	s.Play()
	if !s.Snapshot().Playing {
		t.Fatal("not playing after Play")
	}

	wantIndex := 1
	for {
		ev := waitEvent(t, s.Events(), 10*time.Second)
		if ev.Kind == EventFinished {
			break
		}
		if ev.Index != wantIndex {
			t.Fatalf("event index = %d, want %d", ev.Index, wantIndex)
		}
		if ev.Word != "word" {
			t.Fatalf("event word = %q", ev.Word)
		}
		wantIndex++
	}
	if wantIndex != 25 {
		t.Errorf("saw word events up to index %d, want 24", wantIndex-1)
	}

	st := s.Snapshot()
	if st.Playing {
		t.Error("still playing after finish")
	}
	if st.Index != 0 {
		t.Errorf("index after finish = %d, want 0", st.Index)
	}

	calls := rec.snapshot()
	want := []saveCall{{10, true}, {20, true}}
	if len(calls) != len(want) {
		t.Fatalf("save calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("save call %d = %v, want %v", i, calls[i], want[i])
		}
	}
}

func TestPauseCancelsPendingAdvance(t *testing.T) {
	s := NewScheduler(nWords(100), Options{WPM: 1200})
	defer s.Close()

	s.Play()
	waitEvent(t, s.Events(), 5*time.Second)
	waitEvent(t, s.Events(), 5*time.Second)
	s.Pause()

	st := s.Snapshot()
	if st.Playing {
		t.Fatal("playing after Pause")
	}
	// A surviving timer would advance the cursor within a few cadences.
	time.Sleep(300 * time.Millisecond)
	if got := s.Snapshot().Index; got != st.Index {
		t.Errorf("index advanced from %d to %d after Pause", st.Index, got)
	}
}

func TestPauseEmitsAuthoritativeSave(t *testing.T) {
	rec := &saveRecorder{}
	s := NewScheduler(nWords(10), Options{WPM: 300, OnSave: rec.hook()})
	defer s.Close()

	s.Play()
	s.Pause()

	calls := rec.snapshot()
	if len(calls) != 1 || calls[0].checkpoint {
		t.Fatalf("save calls after pause = %v, want one authoritative", calls)
	}

	// Pausing while stopped is a no-op.
	s.Pause()
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("pause while stopped added saves: %v", got)
	}
}

func TestJumpToClamps(t *testing.T) {
	rec := &saveRecorder{}
	s := NewScheduler(nWords(10), Options{WPM: 300, OnSave: rec.hook()})
	defer s.Close()

	tests := []struct {
		jump int
		want int
	}{
		{-5, 0},
		{999, 9},
		{4, 4},
	}
	for _, tt := range tests {
		s.JumpTo(tt.jump)
		if got := s.Snapshot().Index; got != tt.want {
			t.Errorf("JumpTo(%d): index = %d, want %d", tt.jump, got, tt.want)
		}
	}

	calls := rec.snapshot()
	if len(calls) != len(tests) {
		t.Fatalf("save calls = %v, want one per jump", calls)
	}
	for i, tt := range tests {
		if calls[i] != (saveCall{tt.want, false}) {
			t.Errorf("save call %d = %v, want {%d false}", i, calls[i], tt.want)
		}
	}
}

func TestJumpStopsPlayback(t *testing.T) {
	s := NewScheduler(nWords(100), Options{WPM: 1200})
	defer s.Close()

	s.Play()
	waitEvent(t, s.Events(), 5*time.Second)
	s.JumpTo(50)

	st := s.Snapshot()
	if st.Playing {
		t.Error("playing after JumpTo")
	}
	if st.Index != 50 {
		t.Errorf("index = %d, want 50", st.Index)
	}
}

func TestJumpBy(t *testing.T) {
	s := NewScheduler(nWords(10), Options{})
	defer s.Close()

	s.JumpBy(3)
	if got := s.Snapshot().Index; got != 3 {
		t.Errorf("index = %d, want 3", got)
	}
	s.JumpBy(-5)
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("index = %d, want 0", got)
	}
}

func TestReset(t *testing.T) {
	s := NewScheduler(nWords(10), Options{ResumeIndex: 7})
	defer s.Close()

	if got := s.Snapshot().Index; got != 7 {
		t.Fatalf("resume index = %d, want 7", got)
	}
	s.Reset()
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("index after Reset = %d, want 0", got)
	}
}

func TestResumeIndexClamps(t *testing.T) {
	if got := NewScheduler(nWords(10), Options{ResumeIndex: 999}).Snapshot().Index; got != 9 {
		t.Errorf("resume 999 on 10 words: index = %d, want 9", got)
	}
	if got := NewScheduler(nWords(10), Options{ResumeIndex: -3}).Snapshot().Index; got != 0 {
		t.Errorf("resume -3: index = %d, want 0", got)
	}
	if got := NewScheduler(nil, Options{ResumeIndex: 5}).Snapshot().Index; got != 0 {
		t.Errorf("resume on empty stream: index = %d, want 0", got)
	}
}

func TestPlayOnEmptyStream(t *testing.T) {
	s := NewScheduler(nil, Options{})
	defer s.Close()

	s.Play()
	if s.Snapshot().Playing {
		t.Error("empty stream reports playing")
	}
}

func TestPlayWhilePlayingIsNoop(t *testing.T) {
	s := NewScheduler(nWords(50), Options{WPM: 1200})
	defer s.Close()

	s.Play()
	s.Play()
	s.Play()

	// A duplicated timer would produce out-of-order or duplicate indices.
	last := 0
	for i := 0; i < 5; i++ {
		ev := waitEvent(t, s.Events(), 5*time.Second)
		if ev.Index != last+1 {
			t.Fatalf("event index = %d after %d", ev.Index, last)
		}
		last = ev.Index
	}
}

func TestSetWPMClamps(t *testing.T) {
	s := NewScheduler(nWords(10), Options{WPM: 300})
	defer s.Close()

	s.SetWPM(5000)
	if got := s.Snapshot().WPM; got != MaxWPM {
		t.Errorf("WPM = %v, want %v", got, float64(MaxWPM))
	}
	s.SetWPM(1)
	if got := s.Snapshot().WPM; got != MinWPM {
		t.Errorf("WPM = %v, want %v", got, float64(MinWPM))
	}
	s.AdjustWPM(-500)
	if got := s.Snapshot().WPM; got != MinWPM {
		t.Errorf("WPM after AdjustWPM = %v, want %v", got, float64(MinWPM))
	}
}

func TestSentenceJumps(t *testing.T) {
	words := []string{"One.", "Two", "words.", "Three", "here."}
	s := NewScheduler(words, Options{})
	defer s.Close()

	s.JumpTo(3)
	s.JumpToPrevSentence()
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("prev sentence from 3: index = %d, want 1", got)
	}
	s.JumpToPrevSentence()
	if got := s.Snapshot().Index; got != 0 {
		t.Errorf("prev sentence from 1: index = %d, want 0", got)
	}
	s.JumpToNextSentence()
	if got := s.Snapshot().Index; got != 1 {
		t.Errorf("next sentence from 0: index = %d, want 1", got)
	}
	s.JumpToNextSentence()
	if got := s.Snapshot().Index; got != 3 {
		t.Errorf("next sentence from 1: index = %d, want 3", got)
	}
	s.JumpToNextSentence()
	if got := s.Snapshot().Index; got != 3 {
		t.Errorf("next sentence at last start: index = %d, want 3", got)
	}
}

func TestAccessors(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta"}
	s := NewScheduler(words, Options{ResumeIndex: 2})
	defer s.Close()

	if got := s.WordCount(); got != 4 {
		t.Errorf("WordCount = %d", got)
	}
	if got := s.CurrentWord(); got != "gamma" {
		t.Errorf("CurrentWord = %q", got)
	}
	if got := s.Word(99); got != "" {
		t.Errorf("Word(99) = %q, want empty", got)
	}
	if got := s.Progress(); got != 0.5 {
		t.Errorf("Progress = %v, want 0.5", got)
	}
}
