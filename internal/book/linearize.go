package book

import (
	"sort"
	"strings"

	"github.com/haasele/focus-reader/internal/archive"
)

// markupSuffixes are the entry suffixes treated as readable content during
// fallback discovery.
var markupSuffixes = []string{".html", ".xhtml", ".htm"}

// OrderedContentPaths derives the linear reading order. With a package
// document, spine idrefs resolve through the manifest; idrefs without a
// manifest entry are skipped. When that yields nothing (or doc is nil), every
// markup entry in the archive is taken instead, in natural order. Paths are
// de-duplicated so no content file is read twice.
func OrderedContentPaths(a *archive.Archive, doc *PackageDoc) []string {
	if doc != nil {
		seen := make(map[string]bool, len(doc.Spine))
		var out []string
		for _, idref := range doc.Spine {
			href, ok := doc.Manifest[idref]
			if !ok {
				continue
			}
			p := joinContainerPath(doc.Dir, href)
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
		if len(out) > 0 {
			return out
		}
	}
	return discoverMarkupPaths(a)
}

func discoverMarkupPaths(a *archive.Archive) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range a.Paths() {
		if seen[p] || !isMarkupPath(p) {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return NaturalLess(out[i], out[j])
	})
	return out
}

func isMarkupPath(p string) bool {
	lower := strings.ToLower(p)
	for _, suf := range markupSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

// NaturalLess orders strings so that embedded numbers compare numerically:
// "ch2" sorts before "ch10". Comparison is case-insensitive; digit runs are
// compared as integers of arbitrary length, everything else lexicographically.
func NaturalLess(a, b string) bool {
	return naturalCompare(a, b) < 0
}

func naturalCompare(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ra) && i < len(rb); i++ {
		var c int
		if isDigitRun(ra[i]) && isDigitRun(rb[i]) {
			c = compareNumeric(ra[i], rb[i])
		} else {
			c = strings.Compare(strings.ToLower(ra[i]), strings.ToLower(rb[i]))
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	default:
		return 0
	}
}

// splitRuns breaks s into maximal runs of digits and non-digits.
func splitRuns(s string) []string {
	var runs []string
	for i := 0; i < len(s); {
		digit := isDigit(s[i])
		j := i + 1
		for j < len(s) && isDigit(s[j]) == digit {
			j++
		}
		runs = append(runs, s[i:j])
		i = j
	}
	return runs
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigitRun(s string) bool {
	return s != "" && isDigit(s[0])
}

// compareNumeric compares two digit runs as integers without parsing them,
// so lengths beyond any fixed-width integer still order correctly.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
