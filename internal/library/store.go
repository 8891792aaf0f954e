// Package library persists imported books: their bytes, metadata, reading
// progress, and cover thumbnails.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, no cgo
)

// ErrBookNotFound indicates no stored book matches the given id.
var ErrBookNotFound = errors.New("library: book not found")

// BookMetadata is the stored record for one imported book. ID is derived
// from file content, so re-importing the same file lands on the same row.
type BookMetadata struct {
	ID            string
	Title         string
	Author        string
	FileName      string
	FileType      string
	TotalWords    int
	LastReadIndex int
	LastOpenedAt  time.Time
}

// Store is the SQLite-backed library. Safe for concurrent use; database/sql
// serializes access to the single connection the driver hands out.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the library database location under the XDG data dir.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "focus-reader", "library.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "focus-reader", "library.db"), nil
}

// OpenStore opens the library database at path, creating the file and schema
// as needed.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("library: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("library: open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("library: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS books (
		id              TEXT PRIMARY KEY,
		title           TEXT NOT NULL,
		author          TEXT NOT NULL DEFAULT '',
		file_name       TEXT NOT NULL,
		file_type       TEXT NOT NULL,
		total_words     INTEGER NOT NULL,
		last_read_index INTEGER NOT NULL DEFAULT 0,
		last_opened_at  TIMESTAMP NOT NULL,
		added_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		data            BLOB NOT NULL,
		cover           BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_books_last_opened ON books(last_opened_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a book. A fresh import keeps an existing row's reading
// position and stored bytes; metadata, recency, and any newly extracted
// cover are refreshed.
func (s *Store) Save(meta BookMetadata, fileBytes, cover []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO books (id, title, author, file_name, file_type,
			total_words, last_read_index, last_opened_at, data, cover)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title          = excluded.title,
			author         = excluded.author,
			file_name      = excluded.file_name,
			file_type      = excluded.file_type,
			total_words    = excluded.total_words,
			last_opened_at = excluded.last_opened_at,
			cover          = COALESCE(excluded.cover, books.cover)`,
		meta.ID, meta.Title, meta.Author, meta.FileName, meta.FileType,
		meta.TotalWords, meta.LastReadIndex, meta.LastOpenedAt.UTC(), fileBytes, nullableBlob(cover))
	if err != nil {
		return fmt.Errorf("library: save %s: %w", meta.ID, err)
	}
	return nil
}

// Load returns the stored file bytes for a book.
func (s *Store) Load(id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT data FROM books WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("library: load %s: %w", id, err)
	}
	return data, nil
}

// GetMetadata returns the stored record for a book.
func (s *Store) GetMetadata(id string) (BookMetadata, error) {
	row := s.db.QueryRow(`
		SELECT id, title, author, file_name, file_type,
			total_words, last_read_index, last_opened_at
		FROM books WHERE id = ?`, id)
	meta, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return BookMetadata{}, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return BookMetadata{}, fmt.Errorf("library: metadata %s: %w", id, err)
	}
	return meta, nil
}

// UpdateProgress records the last read word index for a book.
func (s *Store) UpdateProgress(id string, index int) error {
	res, err := s.db.Exec(`UPDATE books SET last_read_index = ? WHERE id = ?`, index, id)
	if err != nil {
		return fmt.Errorf("library: update progress %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	return nil
}

// Touch bumps a book's recency, moving it to the top of ListAll.
func (s *Store) Touch(id string) error {
	_, err := s.db.Exec(`UPDATE books SET last_opened_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("library: touch %s: %w", id, err)
	}
	return nil
}

// ListAll returns every stored book, most recently opened first.
func (s *Store) ListAll() ([]BookMetadata, error) {
	rows, err := s.db.Query(`
		SELECT id, title, author, file_name, file_type,
			total_words, last_read_index, last_opened_at
		FROM books ORDER BY last_opened_at DESC, title ASC`)
	if err != nil {
		return nil, fmt.Errorf("library: list: %w", err)
	}
	defer rows.Close()

	var out []BookMetadata
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("library: list scan: %w", err)
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("library: list rows: %w", err)
	}
	return out, nil
}

// GetCover returns a book's stored cover thumbnail, or nil when the book has
// none.
func (s *Store) GetCover(id string) ([]byte, error) {
	var cover []byte
	err := s.db.QueryRow(`SELECT cover FROM books WHERE id = ?`, id).Scan(&cover)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("library: cover %s: %w", id, err)
	}
	return cover, nil
}

// Delete removes a book and its stored bytes.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("library: delete %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMetadata(row rowScanner) (BookMetadata, error) {
	var meta BookMetadata
	err := row.Scan(&meta.ID, &meta.Title, &meta.Author, &meta.FileName,
		&meta.FileType, &meta.TotalWords, &meta.LastReadIndex, &meta.LastOpenedAt)
	return meta, err
}

func nullableBlob(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
