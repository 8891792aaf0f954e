package book

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/haasele/focus-reader/internal/text"
)

// MarkdownFormat reads markdown documents, turning headers into chapter
// boundaries.
type MarkdownFormat struct{}

func init() {
	RegisterFormat(&MarkdownFormat{})
}

var headerLine = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (f *MarkdownFormat) Name() string { return "Markdown" }

func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

func (f *MarkdownFormat) Parse(data []byte, fallbackTitle string) (*Document, error) {
	doc := &Document{Title: fallbackTitle}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if match := headerLine.FindStringSubmatch(line); match != nil {
			title := strings.TrimSpace(match[2])
			doc.Chapters = append(doc.Chapters, Chapter{
				Title:     title,
				WordStart: len(doc.Words),
			})
			// Header text is read as part of the stream, marker runes dropped.
			doc.Words = append(doc.Words, text.Tokenize(title)...)
			continue
		}
		doc.Words = append(doc.Words, text.Tokenize(line)...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(doc.Words) == 0 {
		return nil, ErrNoText
	}
	if len(doc.Chapters) == 0 {
		doc.Chapters = []Chapter{{Title: fallbackTitle, WordStart: 0}}
	}
	// The first header often is the document title.
	if len(doc.Chapters) > 0 && doc.Chapters[0].WordStart == 0 && doc.Chapters[0].Title != "" {
		doc.Title = doc.Chapters[0].Title
	}
	return doc, nil
}
