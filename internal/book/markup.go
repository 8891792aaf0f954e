package book

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipTags are elements whose entire content is dropped.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// The tokenizer treats <script/> and <style/> as openers of raw-text content,
// swallowing everything after them. Rewriting them as open+close pairs keeps
// it on track.
var selfClosingSkipTag = regexp.MustCompile(`(?is)<(script|style)\b([^>]*)/>`)

// ExtractMarkupText reduces one markup document to plain text: script and
// style blocks dropped with their content, every other tag stripped,
// whitespace runs collapsed to single spaces, result trimmed. Character
// references are decoded. Malformed markup degrades to whatever text was
// recovered before the tokenizer gave up; this function never fails.
func ExtractMarkupText(data []byte) string {
	if selfClosingSkipTag.Match(data) {
		data = selfClosingSkipTag.ReplaceAll(data, []byte("<$1$2></$1>"))
	}

	tz := html.NewTokenizer(bytes.NewReader(data))
	var buf strings.Builder
	skipDepth := 0

	for {
		switch tz.Next() {
		case html.ErrorToken:
			// EOF and malformed input land here alike; either way the text
			// gathered so far is the result.
			return strings.Join(strings.Fields(buf.String()), " ")

		case html.StartTagToken:
			name, _ := tz.TagName()
			if skipTags[atom.Lookup(name)] {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := tz.TagName()
			if skipTags[atom.Lookup(name)] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tz.Text())
				buf.WriteByte(' ')
			}
		}
	}
}
