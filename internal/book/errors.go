package book

import "errors"

var (
	// ErrNoPackageDocument indicates the container carries no package
	// document. Recoverable: linearization falls back to markup-file
	// discovery.
	ErrNoPackageDocument = errors.New("book: no package document in container")

	// ErrNoText indicates no strategy produced any readable text.
	ErrNoText = errors.New("book: no readable text found")

	// ErrUnsupported indicates no registered format accepts the input.
	ErrUnsupported = errors.New("book: unsupported document type")
)
