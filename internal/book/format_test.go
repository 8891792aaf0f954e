package book

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"book.epub", "EPUB"},
		{"BOOK.EPUB", "EPUB"},
		{"notes.txt", "Plain text"},
		{"readme.md", "Markdown"},
		{"paper.pdf", "PDF"},
		{"mystery.xyz", ""},
		{"noextension", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f := FormatFor(tt.filename)
			switch {
			case tt.want == "" && f != nil:
				t.Errorf("FormatFor(%q) = %s, want nil", tt.filename, f.Name())
			case tt.want != "" && (f == nil || f.Name() != tt.want):
				t.Errorf("FormatFor(%q) = %v, want %s", tt.filename, f, tt.want)
			}
		})
	}
}

func TestParseDispatchesByExtension(t *testing.T) {
	doc, err := Parse("book.epub", buildTestEPUB(t), "fallback")
	if err != nil {
		t.Fatalf("Parse epub: %v", err)
	}
	if doc.Title != "The Time Machine" {
		t.Errorf("Title = %q", doc.Title)
	}
}

func TestParseUnknownExtensionReadsPlainText(t *testing.T) {
	doc, err := Parse("stream", []byte("words from a pipe"), "stdin")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(doc.Words, []string{"words", "from", "a", "pipe"}) {
		t.Errorf("Words = %v", doc.Words)
	}
	if doc.Title != "stdin" {
		t.Errorf("Title = %q", doc.Title)
	}
}

func TestParsePlainText(t *testing.T) {
	doc, err := Parse("notes.txt", []byte("  one two\nthree  "), "Notes")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Words) != 3 {
		t.Errorf("Words = %v", doc.Words)
	}
	if len(doc.Chapters) != 1 || doc.Chapters[0].Title != "Notes" {
		t.Errorf("Chapters = %v", doc.Chapters)
	}

	if _, err := Parse("empty.txt", []byte("   "), "Empty"); !errors.Is(err, ErrNoText) {
		t.Errorf("empty input error = %v, want ErrNoText", err)
	}
	if _, err := Parse("bin.txt", []byte{0xff, 0xfe, 0x80}, "Bin"); !errors.Is(err, ErrNoText) {
		t.Errorf("binary input error = %v, want ErrNoText", err)
	}
}

func TestParseMarkdown(t *testing.T) {
	src := `# My Book

Intro paragraph here.

## Chapter One

First chapter words.

## Chapter Two

Second chapter words.
`
	doc, err := Parse("book.md", []byte(src), "fallback")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Title != "My Book" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Chapters) != 3 {
		t.Fatalf("Chapters = %v", doc.Chapters)
	}
	if doc.Chapters[1].Title != "Chapter One" {
		t.Errorf("chapter 1 = %+v", doc.Chapters[1])
	}
	for _, w := range doc.Words {
		if strings.HasPrefix(w, "#") {
			t.Errorf("header marker leaked into word stream: %q", w)
		}
	}
	// Boundary points at the header's own words.
	if doc.Words[doc.Chapters[1].WordStart] != "Chapter" {
		t.Errorf("word at chapter 1 start = %q", doc.Words[doc.Chapters[1].WordStart])
	}
}

func TestParseMarkdownNoHeaders(t *testing.T) {
	doc, err := Parse("plain.md", []byte("no headers just text"), "Plain")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Chapters) != 1 || doc.Chapters[0].Title != "Plain" {
		t.Errorf("Chapters = %v", doc.Chapters)
	}
	if doc.Title != "Plain" {
		t.Errorf("Title = %q", doc.Title)
	}
}

type fakeRenderer struct {
	text string
	err  error
}

func (r *fakeRenderer) ExtractText(data []byte) (string, error) {
	return r.text, r.err
}

func TestParsePDFDelegation(t *testing.T) {
	SetPageTextRenderer(nil)
	if _, err := Parse("doc.pdf", []byte("%PDF-1.4"), "Doc"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("no renderer error = %v, want ErrUnsupported", err)
	}

	SetPageTextRenderer(&fakeRenderer{text: "rendered page text"})
	defer SetPageTextRenderer(nil)
	doc, err := Parse("doc.pdf", []byte("%PDF-1.4"), "Doc")
	if err != nil {
		t.Fatalf("Parse with renderer: %v", err)
	}
	if !reflect.DeepEqual(doc.Words, []string{"rendered", "page", "text"}) {
		t.Errorf("Words = %v", doc.Words)
	}

	SetPageTextRenderer(&fakeRenderer{err: fmt.Errorf("render boom")})
	if _, err := Parse("doc.pdf", []byte("%PDF-1.4"), "Doc"); err == nil {
		t.Error("renderer failure not surfaced")
	}
}

func TestSupportedFormats(t *testing.T) {
	list := SupportedFormats()
	if len(list) < 4 {
		t.Fatalf("SupportedFormats = %v", list)
	}
	joined := strings.Join(list, "; ")
	for _, want := range []string{"EPUB", ".epub", "Markdown", ".md", "Plain text", ".txt", "PDF"} {
		if !strings.Contains(joined, want) {
			t.Errorf("SupportedFormats missing %q: %v", want, list)
		}
	}
}
