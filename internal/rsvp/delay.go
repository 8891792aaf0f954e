package rsvp

import (
	"math"
	"time"
	"unicode/utf8"
)

// Rate bounds in words per minute.
const (
	MinWPM = 60
	MaxWPM = 1200

	// DefaultWPM is the starting rate for new sessions.
	DefaultWPM = 300
)

// longWordRunes is the length above which the long-word delay kicks in.
const longWordRunes = 9

// shortWordRunes is the length below which words display slightly faster.
const shortWordRunes = 3

// ClampWPM bounds a rate to [MinWPM, MaxWPM]. Non-positive rates clamp to
// MinWPM.
func ClampWPM(wpm float64) float64 {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}

// Delay returns how long word stays on screen at the given rate. The
// multiplier table is the complete timing contract: sentence-ending
// punctuation 2.5x, clause punctuation 1.5x, long words 1.5x on their own or
// a further 1.2x on top of a punctuation multiplier, very short words 0.8x.
func Delay(word string, wpm float64, longWordDelay bool) time.Duration {
	base := math.Round(60000 / ClampWPM(wpm))

	mult := 1.0
	if n := len(word); n > 0 {
		// Punctuation is ASCII, so the final byte is safe to inspect even in
		// multi-byte words.
		switch word[n-1] {
		case '.', '!', '?', ':':
			mult = 2.5
		case ',', ';':
			mult = 1.5
		}
	}

	runes := utf8.RuneCountInString(word)
	switch {
	case longWordDelay && runes > longWordRunes:
		if mult == 1.0 {
			mult = 1.5
		} else {
			mult *= 1.2
		}
	case runes < shortWordRunes:
		mult *= 0.8
	}

	return time.Duration(math.Round(base*mult)) * time.Millisecond
}
