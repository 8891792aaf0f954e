// Package rsvp drives rapid serial visual presentation of a word stream: one
// word at a time, paced by a per-word delay, with a focus character for the
// eye to anchor on.
package rsvp

import (
	"sync"
	"time"

	"github.com/haasele/focus-reader/internal/text"
)

// EventKind distinguishes scheduler notifications.
type EventKind int

const (
	// EventWord announces the word now on display.
	EventWord EventKind = iota

	// EventFinished announces the stream completed; the cursor has reset to
	// zero and playback stopped.
	EventFinished
)

// Event is a playback notification. Events are advisory display triggers;
// Snapshot remains the authoritative state.
type Event struct {
	Kind  EventKind
	Index int
	Word  string
}

// Session is the mutable playback state for one word stream.
type Session struct {
	Index         int
	Playing       bool
	WPM           float64
	LongWordDelay bool
}

// saveEvery is the word interval between periodic progress checkpoints.
const saveEvery = 10

// eventBuffer absorbs short consumer stalls; beyond it, events are dropped
// rather than delaying the cadence.
const eventBuffer = 16

// Options configures a scheduler for one word stream.
type Options struct {
	WPM           float64 // 0 means DefaultWPM; clamped to [MinWPM, MaxWPM]
	LongWordDelay bool
	ResumeIndex   int // clamped into the stream

	// OnSave receives progress checkpoints. checkpoint is true for periodic
	// mid-playback saves and false for authoritative positions (pause, reset,
	// jump). Must not block; it runs on the timer goroutine.
	OnSave func(index int, checkpoint bool)
}

// Scheduler advances through a word stream one word at a time. At most one
// timer is live; replacing it cancels the previous one, and a generation
// counter keeps an already-fired stale timer from touching state. All methods
// are safe for concurrent use.
//
// A Scheduler is bound to its word stream for life. Loading a different book
// means building a new Scheduler, which is what makes stream replacement
// atomic.
type Scheduler struct {
	mu        sync.Mutex
	words     []string
	sentences []int
	st        Session
	timer     *time.Timer
	gen       uint64
	events    chan Event
	onSave    func(index int, checkpoint bool)
}

// NewScheduler builds a stopped scheduler positioned at opts.ResumeIndex.
func NewScheduler(words []string, opts Options) *Scheduler {
	wpm := opts.WPM
	if wpm == 0 {
		wpm = DefaultWPM
	}
	idx := opts.ResumeIndex
	if idx < 0 || len(words) == 0 {
		idx = 0
	} else if idx > len(words)-1 {
		idx = len(words) - 1
	}
	return &Scheduler{
		words:     words,
		sentences: text.SentenceStarts(words),
		st: Session{
			Index:         idx,
			WPM:           ClampWPM(wpm),
			LongWordDelay: opts.LongWordDelay,
		},
		events: make(chan Event, eventBuffer),
		onSave: opts.OnSave,
	}
}

// Events returns the notification channel. The channel is never closed; it
// simply goes quiet once playback stops.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Play starts advancing from the current word. A no-op while already playing
// or on an empty stream.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Playing || len(s.words) == 0 {
		return
	}
	s.st.Playing = true
	s.scheduleLocked()
}

// Pause stops playback, cancels the pending advance, and reports the position
// as authoritative. A no-op while stopped.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if !s.st.Playing {
		s.mu.Unlock()
		return
	}
	s.st.Playing = false
	s.cancelLocked()
	idx := s.st.Index
	save := s.onSave
	s.mu.Unlock()

	if save != nil {
		save(idx, false)
	}
}

// Reset stops playback and rewinds to the first word.
func (s *Scheduler) Reset() {
	s.jump(0)
}

// JumpTo stops playback and moves the cursor to index, clamped into the
// stream.
func (s *Scheduler) JumpTo(index int) {
	s.jump(index)
}

// JumpBy stops playback and moves the cursor by delta words, clamped.
func (s *Scheduler) JumpBy(delta int) {
	s.mu.Lock()
	target := s.st.Index + delta
	s.mu.Unlock()
	s.jump(target)
}

// JumpToPrevSentence stops playback and moves to the nearest sentence start
// before the cursor, or to the stream start.
func (s *Scheduler) JumpToPrevSentence() {
	s.mu.Lock()
	target := 0
	for i := len(s.sentences) - 1; i >= 0; i-- {
		if s.sentences[i] < s.st.Index {
			target = s.sentences[i]
			break
		}
	}
	s.mu.Unlock()
	s.jump(target)
}

// JumpToNextSentence stops playback and moves to the nearest sentence start
// after the cursor, if any.
func (s *Scheduler) JumpToNextSentence() {
	s.mu.Lock()
	target := s.st.Index
	for _, start := range s.sentences {
		if start > s.st.Index {
			target = start
			break
		}
	}
	s.mu.Unlock()
	s.jump(target)
}

func (s *Scheduler) jump(index int) {
	s.mu.Lock()
	s.st.Playing = false
	s.cancelLocked()
	if len(s.words) == 0 || index < 0 {
		index = 0
	} else if index > len(s.words)-1 {
		index = len(s.words) - 1
	}
	s.st.Index = index
	save := s.onSave
	s.mu.Unlock()

	if save != nil {
		save(index, false)
	}
}

// SetWPM clamps and applies a new rate. It affects the next scheduled delay;
// an already-pending advance keeps its original timing.
func (s *Scheduler) SetWPM(wpm float64) {
	s.mu.Lock()
	s.st.WPM = ClampWPM(wpm)
	s.mu.Unlock()
}

// AdjustWPM shifts the rate by delta, clamped.
func (s *Scheduler) AdjustWPM(delta float64) {
	s.mu.Lock()
	s.st.WPM = ClampWPM(s.st.WPM + delta)
	s.mu.Unlock()
}

// SetLongWordDelay toggles the long-word multiplier for subsequent delays.
func (s *Scheduler) SetLongWordDelay(on bool) {
	s.mu.Lock()
	s.st.LongWordDelay = on
	s.mu.Unlock()
}

// Snapshot returns a copy of the live session state.
func (s *Scheduler) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// WordCount returns the stream length.
func (s *Scheduler) WordCount() int {
	return len(s.words)
}

// Word returns the word at index, or "" when out of range.
func (s *Scheduler) Word(index int) string {
	if index < 0 || index >= len(s.words) {
		return ""
	}
	return s.words[index]
}

// CurrentWord returns the word under the cursor, or "" for an empty stream.
func (s *Scheduler) CurrentWord() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Word(s.st.Index)
}

// Progress returns the cursor position as a fraction in [0, 1].
func (s *Scheduler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.words) == 0 {
		return 0
	}
	return float64(s.st.Index) / float64(len(s.words))
}

// Close stops playback and cancels any pending timer. The event channel stays
// open; consumers select against their own done signal.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.st.Playing = false
	s.cancelLocked()
	s.mu.Unlock()
}

// scheduleLocked arms the single timer slot for the word under the cursor.
func (s *Scheduler) scheduleLocked() {
	s.cancelLocked()
	s.gen++
	gen := s.gen
	d := Delay(s.words[s.st.Index], s.st.WPM, s.st.LongWordDelay)
	s.timer = time.AfterFunc(d, func() { s.advance(gen) })
}

// cancelLocked disarms the timer slot and invalidates any fire already in
// flight. Stop alone is not enough: the callback may have started before
// Stop and be blocked on the mutex.
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// advance is the timer callback: step the cursor, checkpoint every tenth
// word, finish at the end of the stream, otherwise re-arm for the new word.
func (s *Scheduler) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.st.Playing {
		s.mu.Unlock()
		return
	}

	s.st.Index++
	idx := s.st.Index
	checkpoint := idx%saveEvery == 0

	var ev Event
	if idx >= len(s.words) {
		s.st.Playing = false
		s.st.Index = 0
		s.cancelLocked()
		ev = Event{Kind: EventFinished}
	} else {
		ev = Event{Kind: EventWord, Index: idx, Word: s.words[idx]}
		s.scheduleLocked()
	}
	save := s.onSave
	s.mu.Unlock()

	if checkpoint && save != nil {
		save(idx, true)
	}
	select {
	case s.events <- ev:
	default:
		// Consumer stalled; drop the frame rather than hold up the cadence.
	}
}
