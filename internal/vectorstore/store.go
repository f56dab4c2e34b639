package vectorstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"lectern/internal/embedding"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases with another version are rejected.
const schemaVersion = 1

// DefaultCollection is the collection name used when the caller does not
// override it.
const DefaultCollection = "teacher_content"

const (
	dbFileName   = "store.db"
	lockFileName = ".store.lock"
)

// Store owns one named collection in a persist directory.
type Store struct {
	db           *sql.DB
	path         string
	collectionID int64
	collection   string
	embedder     embedding.Embedder
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the collection under persistDir. The call
// is idempotent: an existing collection is reused, records intact. A file
// lock serializes first-time schema creation across processes.
func Open(ctx context.Context, persistDir, collection string, embedder embedding.Embedder) (*Store, error) {
	if strings.TrimSpace(persistDir) == "" {
		return nil, errors.New("vectorstore: persist directory required")
	}
	if embedder == nil {
		return nil, errors.New("vectorstore: embedder required")
	}
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}

	if err := os.MkdirAll(persistDir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: ensure persist dir: %w", err)
	}

	lock := flock.New(filepath.Join(persistDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("vectorstore: acquire open lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	dbPath := filepath.Join(persistDir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("vectorstore: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, collection: collection, embedder: embedder}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.ensureCollection(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Collection returns the collection name this store operates on.
func (s *Store) Collection() string { return s.collection }

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("vectorstore: check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("vectorstore: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vectorstore: begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("vectorstore: create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("vectorstore: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("vectorstore: commit schema: %w", err)
	}
	return nil
}

func (s *Store) ensureCollection(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO collections (name, created_at) VALUES (?, ?)",
			s.collection, now,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("vectorstore: ensure collection %q: %w", s.collection, err)
	}
	row := s.db.QueryRowContext(ctx, "SELECT id FROM collections WHERE name = ?", s.collection)
	if err := row.Scan(&s.collectionID); err != nil {
		return fmt.Errorf("vectorstore: resolve collection %q: %w", s.collection, err)
	}
	return nil
}
