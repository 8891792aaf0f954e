// Package book turns e-book bytes into an ordered word stream with recovered
// metadata and chapter boundaries. Parsing is resilient: anything wrong with
// a single content file costs that file's words, never the whole book.
package book

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/haasele/focus-reader/internal/archive"
	"github.com/haasele/focus-reader/internal/logging"
	"github.com/haasele/focus-reader/internal/paginate"
	"github.com/haasele/focus-reader/internal/text"
)

// Chapter marks where a content file's words begin within the stream.
type Chapter struct {
	Title     string
	Path      string
	WordStart int
}

// Document is a fully ingested book. Immutable once returned; a reload
// produces a new Document rather than mutating an installed one.
type Document struct {
	Title    string
	Author   string
	Words    []string
	Chapters []Chapter
}

// WordCount returns the stream length.
func (d *Document) WordCount() int {
	return len(d.Words)
}

// ChapterAt returns the chapter containing the given word index, or nil
// before the first chapter or on an empty document.
func (d *Document) ChapterAt(wordIndex int) *Chapter {
	var found *Chapter
	for i := range d.Chapters {
		if d.Chapters[i].WordStart > wordIndex {
			break
		}
		found = &d.Chapters[i]
	}
	return found
}

// ParseBook ingests a zip-based e-book container. The pipeline resolves the
// package document, linearizes the reading order, and extracts text per
// content file in order. Without a package document it degrades to markup
// discovery in natural order. Title and author default to fallbackTitle and
// empty. Fails only when the archive itself is unreadable or no strategy
// yields a single word.
func ParseBook(data []byte, fallbackTitle string) (*Document, error) {
	a, err := archive.Open(data)
	if err != nil {
		return nil, err
	}

	pkg, err := ResolvePackageDoc(a)
	if err != nil {
		if !errors.Is(err, ErrNoPackageDocument) {
			logging.Warn("package document unreadable, falling back to discovery", "err", err)
		}
		pkg = nil
	}

	doc := &Document{Title: fallbackTitle}
	if pkg != nil {
		if pkg.Title != "" {
			doc.Title = pkg.Title
		}
		doc.Author = pkg.Author
	}

	paths := OrderedContentPaths(a, pkg)
	titles := chapterTitles(a, pkg)

	// Spine hrefs occasionally differ from the archive entry in case only.
	lowered := make(map[string]string, a.Len())
	for _, p := range a.Paths() {
		lower := strings.ToLower(p)
		if _, ok := lowered[lower]; !ok {
			lowered[lower] = p
		}
	}

	for _, p := range paths {
		raw, err := a.Read(p)
		if errors.Is(err, archive.ErrEntryNotFound) {
			if alt, ok := lowered[strings.ToLower(p)]; ok {
				raw, err = a.Read(alt)
			}
		}
		if err != nil {
			logging.Debug("skipping content entry", "path", p, "err", err)
			continue
		}
		if !utf8.Valid(raw) {
			logging.Debug("skipping undecodable content entry", "path", p)
			continue
		}

		words := text.Tokenize(ExtractMarkupText(raw))
		if len(words) == 0 {
			continue
		}

		title := titles[p]
		if title == "" {
			title = titles[path.Base(p)]
		}
		if title == "" {
			title = fmt.Sprintf("Section %d", len(doc.Chapters)+1)
		}
		doc.Chapters = append(doc.Chapters, Chapter{
			Title:     title,
			Path:      p,
			WordStart: len(doc.Words),
		})
		doc.Words = append(doc.Words, words...)
	}

	if len(doc.Words) == 0 {
		return nil, ErrNoText
	}
	logging.Info("book parsed",
		"title", doc.Title,
		"words", len(doc.Words),
		"chapters", len(doc.Chapters))
	return doc, nil
}

// Boundaries converts the chapter list into word-index markers for the
// paginator.
func (d *Document) Boundaries() []paginate.Boundary {
	out := make([]paginate.Boundary, 0, len(d.Chapters))
	for _, c := range d.Chapters {
		out = append(out, paginate.Boundary{WordIndex: c.WordStart, Title: c.Title})
	}
	return out
}
