package rsvp

import (
	"math"
	"unicode/utf8"
)

// Policy selects how the optimal recognition point is computed. The two
// variants highlight different characters for the same word, so a session
// must apply exactly one consistently.
type Policy int

const (
	// PolicyProportional places the focus about a third of the way into the
	// word. This is the default.
	PolicyProportional Policy = iota

	// PolicyBanded uses fixed offsets per word-length band.
	PolicyBanded
)

// ParsePolicy maps a configuration string to a Policy. Unknown values fall
// back to PolicyProportional.
func ParsePolicy(s string) Policy {
	if s == "banded" {
		return PolicyBanded
	}
	return PolicyProportional
}

func (p Policy) String() string {
	if p == PolicyBanded {
		return "banded"
	}
	return "proportional"
}

// Index returns the 0-based rune offset of the focus character for word.
func (p Policy) Index(word string) int {
	n := utf8.RuneCountInString(word)
	if n <= 1 {
		return 0
	}
	if p == PolicyBanded {
		switch {
		case n <= 5:
			return 1
		case n <= 9:
			return 2
		case n <= 13:
			return 3
		default:
			return 4
		}
	}
	if n <= 3 {
		return 1
	}
	i := int(math.Round(float64(n) * 0.33))
	if i < 1 {
		i = 1
	}
	if i > n-1 {
		i = n - 1
	}
	return i
}

// Parts is a word sliced around its focus character for display.
type Parts struct {
	Before string
	Focus  string
	After  string
}

// Split slices word at the policy's focus index, rune-aware. An index at or
// past the end of the word degrades to focusing the first rune. The zero
// value is returned for an empty word; callers guard.
func (p Policy) Split(word string) Parts {
	runes := []rune(word)
	if len(runes) == 0 {
		return Parts{}
	}
	i := p.Index(word)
	if i >= len(runes) {
		return Parts{Focus: string(runes[0]), After: string(runes[1:])}
	}
	return Parts{
		Before: string(runes[:i]),
		Focus:  string(runes[i]),
		After:  string(runes[i+1:]),
	}
}
