// Package paginate re-chunks a word stream into fixed-size pages for the
// manual page view.
package paginate

import (
	"sort"
	"strings"
)

// DefaultPageSize is the words-per-page used when callers pass a
// non-positive size.
const DefaultPageSize = 150

// Boundary marks where a chapter begins within the word stream.
type Boundary struct {
	WordIndex int
	Title     string
}

// Page is one fixed-size window over the word stream.
type Page struct {
	WordStart      int
	WordCount      int
	Text           string
	ChapterTitle   string
	IsChapterStart bool
}

// Paginate partitions words into consecutive pages of pageSize words each;
// the final page may be shorter. A page whose first word coincides with a
// boundary is flagged as a chapter start and carries that chapter's title.
// When several boundaries share an index, the first listed wins. Pure:
// identical inputs always produce identical pages.
func Paginate(words []string, pageSize int, boundaries []Boundary) []Page {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if len(words) == 0 {
		return nil
	}

	titleAt := make(map[int]string, len(boundaries))
	for _, b := range boundaries {
		if _, ok := titleAt[b.WordIndex]; !ok {
			titleAt[b.WordIndex] = b.Title
		}
	}

	pages := make([]Page, 0, (len(words)+pageSize-1)/pageSize)
	for start := 0; start < len(words); start += pageSize {
		end := start + pageSize
		if end > len(words) {
			end = len(words)
		}
		p := Page{
			WordStart: start,
			WordCount: end - start,
			Text:      strings.Join(words[start:end], " "),
		}
		if title, ok := titleAt[start]; ok {
			p.IsChapterStart = true
			p.ChapterTitle = title
		}
		pages = append(pages, p)
	}
	return pages
}

// PageForWord returns the index of the page containing wordIndex. Indices
// before the first page map to 0 and indices past the end map to the last
// page, so the result is always a valid page for a non-empty set.
func PageForWord(pages []Page, wordIndex int) int {
	if len(pages) == 0 {
		return 0
	}
	i := sort.Search(len(pages), func(i int) bool {
		return pages[i].WordStart+pages[i].WordCount > wordIndex
	})
	if i >= len(pages) {
		return len(pages) - 1
	}
	return i
}
