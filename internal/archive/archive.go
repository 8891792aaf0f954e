// Package archive provides read access to zip-based e-book containers held
// entirely in memory.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Sentinel errors returned by the archive package.
var (
	// ErrCorruptArchive indicates the bytes are not a readable zip archive.
	ErrCorruptArchive = errors.New("archive: corrupt or unreadable archive")

	// ErrEntryNotFound indicates the requested entry path does not exist.
	ErrEntryNotFound = errors.New("archive: entry not found")
)

// maxEntrySize caps the decompressed size of a single entry. This guards
// against zip bombs; a legitimate content file never comes close.
const maxEntrySize int64 = 256 * 1024 * 1024

// Archive is an opened container. It decodes entries on demand and performs
// no disk I/O. An Archive is safe for concurrent reads.
type Archive struct {
	entries map[string]*zip.File // exact-match index; first entry wins on duplicates
	paths   []string             // entry paths exactly as stored, archive order
}

// Open parses data as a zip archive. Failures wrap ErrCorruptArchive.
func Open(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}

	a := &Archive{
		entries: make(map[string]*zip.File, len(zr.File)),
		paths:   make([]string, 0, len(zr.File)),
	}
	for _, f := range zr.File {
		if _, ok := a.entries[f.Name]; !ok {
			a.entries[f.Name] = f
		}
		a.paths = append(a.paths, f.Name)
	}
	return a, nil
}

// Paths returns every entry path exactly as stored, case preserved, in
// archive order. Callers needing case-insensitive lookup build their own
// lowercase index.
func (a *Archive) Paths() []string {
	return append([]string(nil), a.paths...)
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	return len(a.paths)
}

// Has reports whether an entry exists at exactly the given path.
func (a *Archive) Has(path string) bool {
	_, ok := a.entries[path]
	return ok
}

// Read returns the decompressed contents of the entry at path. The lookup is
// an exact match; a miss wraps ErrEntryNotFound.
func (a *Archive) Read(path string) ([]byte, error) {
	f, ok := a.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}
	if f.UncompressedSize64 > uint64(maxEntrySize) {
		return nil, fmt.Errorf("archive: entry %s too large: %d bytes", path, f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: open entry %s: %w", path, err)
	}
	defer rc.Close()

	// Read one byte past the limit so a forged size declaration is caught.
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, fmt.Errorf("archive: read entry %s: %w", path, err)
	}
	if int64(len(data)) > maxEntrySize {
		return nil, fmt.Errorf("archive: entry %s exceeds decompression limit", path)
	}
	return data, nil
}
