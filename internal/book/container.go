package book

import (
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/haasele/focus-reader/internal/archive"
)

// packageDocSuffix identifies the container's package document entry.
const packageDocSuffix = ".opf"

// PackageDoc is the parsed package document: recovered metadata plus the
// manifest and spine needed to linearize the reading order. Absent fields
// stay zero; only failure to read the entry itself is an error.
type PackageDoc struct {
	Path     string // entry path of the package document
	Dir      string // its containing directory, "" at archive root
	Title    string
	Author   string
	Manifest map[string]string // item id -> href, last seen wins
	Spine    []string          // itemref idrefs in document order

	coverID   string // from <meta name="cover" content="...">
	coverHref string // from a manifest item with properties="cover-image"
}

// The package document is scanned with targeted patterns rather than parsed
// as XML. Real-world containers carry unclosed tags, stray entities, and
// namespace soup too often for a strict parse to survive, and the handful of
// fields needed here are all flat.
var (
	titlePattern   = regexp.MustCompile(`(?is)<(?:[a-z0-9]+:)?title[^>]*>(.*?)</(?:[a-z0-9]+:)?title>`)
	creatorPattern = regexp.MustCompile(`(?is)<(?:[a-z0-9]+:)?creator[^>]*>(.*?)</(?:[a-z0-9]+:)?creator>`)

	itemTagPattern = regexp.MustCompile(`(?is)<item\s[^>]*>`)
	metaTagPattern = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	itemrefPattern = regexp.MustCompile(`(?is)<itemref\s[^>]*?idref\s*=\s*["']([^"']+)["']`)

	idAttr      = regexp.MustCompile(`(?is)\bid\s*=\s*["']([^"']*)["']`)
	hrefAttr    = regexp.MustCompile(`(?is)\bhref\s*=\s*["']([^"']*)["']`)
	propsAttr   = regexp.MustCompile(`(?is)\bproperties\s*=\s*["']([^"']*)["']`)
	nameAttr    = regexp.MustCompile(`(?is)\bname\s*=\s*["']([^"']*)["']`)
	contentAttr = regexp.MustCompile(`(?is)\bcontent\s*=\s*["']([^"']*)["']`)

	innerTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ResolvePackageDoc locates the package document by suffix scan over every
// entry and parses it. Returns ErrNoPackageDocument when no entry matches;
// any other error means the matched entry could not be read.
func ResolvePackageDoc(a *archive.Archive) (*PackageDoc, error) {
	p := findPackageDocPath(a)
	if p == "" {
		return nil, ErrNoPackageDocument
	}
	data, err := a.Read(p)
	if err != nil {
		return nil, fmt.Errorf("book: read package document %s: %w", p, err)
	}
	return parsePackageDoc(p, data), nil
}

func findPackageDocPath(a *archive.Archive) string {
	for _, p := range a.Paths() {
		if strings.HasSuffix(strings.ToLower(p), packageDocSuffix) {
			return p
		}
	}
	return ""
}

func parsePackageDoc(p string, data []byte) *PackageDoc {
	doc := &PackageDoc{
		Path:     p,
		Dir:      containerDir(p),
		Manifest: make(map[string]string),
	}
	s := string(data)

	if m := titlePattern.FindStringSubmatch(s); m != nil {
		doc.Title = cleanInnerText(m[1])
	}
	if m := creatorPattern.FindStringSubmatch(s); m != nil {
		doc.Author = cleanInnerText(m[1])
	}

	// Attributes are pulled out of each tag separately, so id-before-href and
	// href-before-id both match.
	for _, tag := range itemTagPattern.FindAllString(s, -1) {
		id := firstGroup(idAttr, tag)
		href := firstGroup(hrefAttr, tag)
		if id == "" || href == "" {
			continue
		}
		doc.Manifest[id] = normalizeHref(href)
		if strings.Contains(firstGroup(propsAttr, tag), "cover-image") && doc.coverHref == "" {
			doc.coverHref = normalizeHref(href)
		}
	}

	for _, m := range itemrefPattern.FindAllStringSubmatch(s, -1) {
		doc.Spine = append(doc.Spine, m[1])
	}

	for _, tag := range metaTagPattern.FindAllString(s, -1) {
		if strings.EqualFold(firstGroup(nameAttr, tag), "cover") {
			if c := firstGroup(contentAttr, tag); c != "" {
				doc.coverID = c
				break
			}
		}
	}
	return doc
}

// CoverPath resolves the declared cover image, preferring the EPUB 3
// properties marker over the EPUB 2 meta element. Returns "" when the
// document declares none.
func (d *PackageDoc) CoverPath() string {
	if d.coverHref != "" {
		return joinContainerPath(d.Dir, d.coverHref)
	}
	if d.coverID != "" {
		if href, ok := d.Manifest[d.coverID]; ok {
			return joinContainerPath(d.Dir, href)
		}
	}
	return ""
}

func firstGroup(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func cleanInnerText(s string) string {
	s = innerTagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func normalizeHref(href string) string {
	href = html.UnescapeString(href)
	return strings.ReplaceAll(href, `\`, "/")
}

func containerDir(p string) string {
	if d := path.Dir(p); d != "." {
		return d
	}
	return ""
}

// joinContainerPath resolves an href relative to the package document's
// directory the way archive entries are actually laid out.
func joinContainerPath(dir, href string) string {
	if dir == "" {
		return path.Clean(href)
	}
	return path.Join(dir, href)
}
