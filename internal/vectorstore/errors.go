package vectorstore

import "errors"

var (
	// ErrEmptyInput indicates an attempt to store empty or whitespace-only
	// text, or that chunking produced no chunks.
	ErrEmptyInput = errors.New("empty input text")

	// ErrClosed indicates the store has been closed.
	ErrClosed = errors.New("store is closed")

	// ErrSchemaMismatch indicates the database was created by an
	// incompatible version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
)
