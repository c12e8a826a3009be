// Package docstore is an embedded document store built on the docmap mapping
// layer. Records are persisted as MessagePack bodies in a single sqlite
// table, keyed by collection name and document id, and filtered in memory
// with the query package.
package docstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	_ "modernc.org/sqlite"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("docstore: store is closed")
	// ErrNotFound is returned when no document matches the requested id or filter.
	ErrNotFound = errors.New("docstore: document not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	body       BLOB NOT NULL,
	PRIMARY KEY (collection, id)
);`

// Store is a handle to an embedded document database. A Store is safe for
// concurrent use and backs any number of typed collections.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	closed bool
}

// Open opens the document database at path, creating the file and schema as
// needed. The special path ":memory:" opens a private in-memory database.
// The caller must call Close when done; a finalizer logs a warning if the
// store is garbage-collected while still open.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("docstore: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Every pool connection gets its own in-memory database; pin the
		// pool to one so all operations see the same data.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("docstore: init schema: %w", err)
	}
	s := &Store{db: db}
	runtime.SetFinalizer(s, func(s *Store) {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			log.Printf("WARNING: docstore.Store for %q was garbage-collected without being closed (possible connection leak)", path)
		}
	})
	return s, nil
}

// Close releases the underlying database handle. Further operations on the
// store or its collections return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// handle returns the database handle, or ErrClosed after Close.
func (s *Store) handle() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.db, nil
}
