package rsvp

import (
	"testing"
	"unicode/utf8"
)

func TestPolicyProportionalIndex(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"", 0},
		{"a", 0},
		{"ab", 1},
		{"the", 1},
		{"word", 1},  // round(4*0.33) = 1
		{"hello", 2}, // round(5*0.33) = 2
		{"reader", 2},
		{"example", 2},
		{"wonderful", 3},
		{"understand", 3},
		{"extraordinarily", 5}, // round(15*0.33) = 5
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := PolicyProportional.Index(tt.word); got != tt.want {
				t.Errorf("Index(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestPolicyBandedIndex(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"a", 0},
		{"ab", 1},
		{"hello", 1},
		{"braces", 2},
		{"wonderful", 2},
		{"understand", 3},
		{"thirteenchars", 3},
		{"fourteencharss", 4},
		{"extraordinarily", 4},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := PolicyBanded.Index(tt.word); got != tt.want {
				t.Errorf("Index(%q) = %d, want %d", tt.word, got, tt.want)
			}
		})
	}
}

func TestIndexStaysInWord(t *testing.T) {
	words := []string{
		"a", "an", "the", "word", "hello,", "sentence.", "extraordinarily",
		"internationalization", "héllo", "naïveté", "日本語",
	}
	for _, p := range []Policy{PolicyProportional, PolicyBanded} {
		for _, w := range words {
			n := utf8.RuneCountInString(w)
			if got := p.Index(w); got < 0 || got > n-1 {
				t.Errorf("%s.Index(%q) = %d, out of [0, %d]", p, w, got, n-1)
			}
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		word   string
		want   Parts
	}{
		{"empty", PolicyProportional, "", Parts{}},
		{"single", PolicyProportional, "a", Parts{Focus: "a"}},
		{"short", PolicyProportional, "the", Parts{Before: "t", Focus: "h", After: "e"}},
		{"proportional", PolicyProportional, "reading", Parts{Before: "re", Focus: "a", After: "ding"}},
		{"banded", PolicyBanded, "reading", Parts{Before: "re", Focus: "a", After: "ding"}},
		{"multibyte", PolicyProportional, "héllo", Parts{Before: "hé", Focus: "l", After: "lo"}},
		{"punctuated", PolicyBanded, "Yes.", Parts{Before: "Y", Focus: "e", After: "s."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Split(tt.word); got != tt.want {
				t.Errorf("Split(%q) = %+v, want %+v", tt.word, got, tt.want)
			}
		})
	}
}

func TestSplitReassembles(t *testing.T) {
	words := []string{"a", "it", "the", "focus", "extraordinarily", "naïveté", "word,"}
	for _, p := range []Policy{PolicyProportional, PolicyBanded} {
		for _, w := range words {
			parts := p.Split(w)
			if parts.Focus == "" {
				t.Errorf("%s.Split(%q) has empty focus", p, w)
			}
			if got := parts.Before + parts.Focus + parts.After; got != w {
				t.Errorf("%s.Split(%q) reassembles to %q", p, w, got)
			}
		}
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("banded") != PolicyBanded {
		t.Error(`ParsePolicy("banded") != PolicyBanded`)
	}
	for _, s := range []string{"proportional", "", "bogus"} {
		if ParsePolicy(s) != PolicyProportional {
			t.Errorf("ParsePolicy(%q) != PolicyProportional", s)
		}
	}
}
