package book

import (
	"archive/zip"
	"bytes"
	"testing"
)

// entry is one archive member for test fixtures.
type entry struct {
	name string
	data string
}

// buildZip assembles an in-memory archive preserving entry order.
func buildZip(t *testing.T, entries []entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const testOPF = `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>The Time Machine</dc:title>
    <dc:creator>H. G. Wells</dc:creator>
    <meta name="cover" content="cover-img"/>
  </metadata>
  <manifest>
    <item id="c1" href="text/a.xhtml" media-type="application/xhtml+xml"/>
    <item href="text/b.xhtml" id="c2" media-type="application/xhtml+xml"/>
    <item id="nav" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="cover-img" href="images/cover.jpg" media-type="image/jpeg"/>
  </manifest>
  <spine toc="nav">
    <itemref idref="c1"/>
    <itemref idref='c2'/>
  </spine>
</package>`

const testNCX = `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <navMap>
    <navPoint id="n1" playOrder="1">
      <navLabel><text>Chapter One</text></navLabel>
      <content src="text/a.xhtml"/>
      <navPoint id="n1a" playOrder="2">
        <navLabel><text>Part A</text></navLabel>
        <content src="text/a.xhtml#part-a"/>
      </navPoint>
    </navPoint>
    <navPoint id="n2" playOrder="3">
      <navLabel><text>Chapter Two</text></navLabel>
      <content src="text/b.xhtml"/>
    </navPoint>
  </navMap>
</ncx>`

// buildTestEPUB builds a small but complete container: package document,
// navigation document, two content files, and a cover image entry.
func buildTestEPUB(t *testing.T) []byte {
	t.Helper()
	return buildZip(t, []entry{
		{"mimetype", "application/epub+zip"},
		{"OEBPS/content.opf", testOPF},
		{"OEBPS/toc.ncx", testNCX},
		{"OEBPS/text/a.xhtml", "<html><body><h1>Chapter One</h1><p>The Time Traveller was expounding a recondite matter.</p></body></html>"},
		{"OEBPS/text/b.xhtml", "<html><body><h1>Chapter Two</h1><p>We sat and admired his earnestness.</p></body></html>"},
		{"OEBPS/images/cover.jpg", "\xff\xd8\xff\xdbnot really a jpeg"},
	})
}
