package book

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/haasele/focus-reader/internal/text"
)

// Format parses one input type into a Document.
type Format interface {
	Name() string
	Extensions() []string
	Parse(data []byte, fallbackTitle string) (*Document, error)
}

var formats []Format

// RegisterFormat adds a format to the registry. Built-in formats register
// themselves from init; the order of registration breaks extension ties.
func RegisterFormat(f Format) {
	formats = append(formats, f)
}

// FormatFor returns the registered format handling filename's extension, or
// nil when none matches.
func FormatFor(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range formats {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return nil
}

// Parse ingests data using the format matching filename's extension. Unknown
// extensions are read as plain text, which makes piped and extensionless
// input work without ceremony.
func Parse(filename string, data []byte, fallbackTitle string) (*Document, error) {
	if f := FormatFor(filename); f != nil {
		return f.Parse(data, fallbackTitle)
	}
	return parsePlainText(data, fallbackTitle)
}

// SupportedFormats lists registered formats for help output.
func SupportedFormats() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, fmt.Sprintf("%s (%s)", f.Name(), strings.Join(f.Extensions(), ", ")))
	}
	return out
}

// EPUBFormat handles zip-based e-book containers.
type EPUBFormat struct{}

func init() {
	RegisterFormat(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string { return "EPUB" }

func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

func (f *EPUBFormat) Parse(data []byte, fallbackTitle string) (*Document, error) {
	return ParseBook(data, fallbackTitle)
}

// PlainTextFormat handles bare text documents.
type PlainTextFormat struct{}

func init() {
	RegisterFormat(&PlainTextFormat{})
}

func (f *PlainTextFormat) Name() string { return "Plain text" }

func (f *PlainTextFormat) Extensions() []string { return []string{".txt", ".text"} }

func (f *PlainTextFormat) Parse(data []byte, fallbackTitle string) (*Document, error) {
	return parsePlainText(data, fallbackTitle)
}

func parsePlainText(data []byte, fallbackTitle string) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid text", ErrNoText)
	}
	words := text.Tokenize(string(data))
	if len(words) == 0 {
		return nil, ErrNoText
	}
	return &Document{
		Title:    fallbackTitle,
		Words:    words,
		Chapters: []Chapter{{Title: fallbackTitle, WordStart: 0}},
	}, nil
}

// PageTextRenderer extracts plain text from a page-description document.
// Rendering is outside this package's scope; an application wires one in
// when available.
type PageTextRenderer interface {
	ExtractText(data []byte) (string, error)
}

// PDFFormat delegates text extraction to an external renderer.
type PDFFormat struct {
	renderer PageTextRenderer
}

var pdfFormat = &PDFFormat{}

func init() {
	RegisterFormat(pdfFormat)
}

// SetPageTextRenderer installs the renderer used for page-description
// documents. Without one, parsing such documents fails cleanly.
func SetPageTextRenderer(r PageTextRenderer) {
	pdfFormat.renderer = r
}

func (f *PDFFormat) Name() string { return "PDF" }

func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) Parse(data []byte, fallbackTitle string) (*Document, error) {
	if f.renderer == nil {
		return nil, fmt.Errorf("%w: no page renderer configured", ErrUnsupported)
	}
	extracted, err := f.renderer.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("book: render page text: %w", err)
	}
	return parsePlainText([]byte(extracted), fallbackTitle)
}
