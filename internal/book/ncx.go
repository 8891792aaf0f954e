package book

import (
	"encoding/xml"
	"path"
	"strings"

	"github.com/haasele/focus-reader/internal/archive"
	"github.com/haasele/focus-reader/internal/logging"
)

// NCX structures for the navigation document that carries chapter titles.
type ncx struct {
	NavMap ncxNavMap `xml:"navMap"`
}

type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

type ncxNavPoint struct {
	Label    ncxLabel      `xml:"navLabel"`
	Content  ncxContent    `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

type ncxLabel struct {
	Text string `xml:"text"`
}

type ncxContent struct {
	Src string `xml:"src,attr"`
}

// chapterTitles recovers a map from content path (full and base name) to
// chapter title via the navigation document. Nested points flatten in
// pre-order, first title per target winning. Missing or unparseable
// navigation degrades to an empty map; titles are decoration, not structure.
func chapterTitles(a *archive.Archive, doc *PackageDoc) map[string]string {
	titles := make(map[string]string)

	data := readNavigationDoc(a, doc)
	if data == nil {
		return titles
	}
	var nav ncx
	if err := xml.Unmarshal(data, &nav); err != nil {
		logging.Debug("navigation document unparseable", "err", err)
		return titles
	}

	dir := ""
	if doc != nil {
		dir = doc.Dir
	}
	var walk func(points []ncxNavPoint)
	walk = func(points []ncxNavPoint) {
		for _, np := range points {
			src := np.Content.Src
			if i := strings.Index(src, "#"); i >= 0 {
				src = src[:i]
			}
			title := strings.TrimSpace(np.Label.Text)
			if src != "" && title != "" {
				full := joinContainerPath(dir, normalizeHref(src))
				if _, ok := titles[full]; !ok {
					titles[full] = title
				}
				base := path.Base(src)
				if _, ok := titles[base]; !ok {
					titles[base] = title
				}
			}
			walk(np.Children)
		}
	}
	walk(nav.NavMap.NavPoints)
	return titles
}

// readNavigationDoc prefers a manifest href ending in .ncx, then falls back
// to scanning the whole archive.
func readNavigationDoc(a *archive.Archive, doc *PackageDoc) []byte {
	if doc != nil {
		for _, href := range doc.Manifest {
			if !strings.HasSuffix(strings.ToLower(href), ".ncx") {
				continue
			}
			if data, err := a.Read(joinContainerPath(doc.Dir, href)); err == nil {
				return data
			}
		}
	}
	for _, p := range a.Paths() {
		if !strings.HasSuffix(strings.ToLower(p), ".ncx") {
			continue
		}
		if data, err := a.Read(p); err == nil {
			return data
		}
	}
	return nil
}
