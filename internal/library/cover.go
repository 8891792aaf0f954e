package library

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/haasele/focus-reader/internal/archive"
	"github.com/haasele/focus-reader/internal/book"
	"github.com/haasele/focus-reader/internal/logging"
)

// maxCoverWidth bounds the stored thumbnail. Library listings never show
// covers larger than this, so full-size art would be dead weight in the
// database.
const maxCoverWidth = 400

var coverImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ExtractCover pulls the declared cover image out of a zip-based container
// and normalizes it to a bounded-width JPEG thumbnail. Every failure returns
// nil: a book without a usable cover is still a book.
func ExtractCover(data []byte) []byte {
	a, err := archive.Open(data)
	if err != nil {
		return nil
	}

	p := coverEntryPath(a)
	if p == "" {
		return nil
	}
	raw, err := a.Read(p)
	if err != nil {
		return nil
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		logging.Debug("cover image undecodable", "path", p, "err", err)
		return nil
	}
	if img.Bounds().Dx() > maxCoverWidth {
		img = imaging.Resize(img, maxCoverWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil
	}
	return buf.Bytes()
}

// coverEntryPath locates the cover image: the package document's declaration
// when it has one, otherwise any image entry whose name suggests it.
func coverEntryPath(a *archive.Archive) string {
	if doc, err := book.ResolvePackageDoc(a); err == nil {
		if p := doc.CoverPath(); p != "" && a.Has(p) {
			return p
		}
	}
	for _, p := range a.Paths() {
		base := strings.ToLower(path.Base(p))
		if coverImageExts[path.Ext(base)] && strings.Contains(base, "cover") {
			return p
		}
	}
	return ""
}
