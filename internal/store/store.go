package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Retry policy for opening/pinging the database. The store is mandatory
// for the query engine, so connectivity failures are retried a bounded
// number of times with exponential backoff before becoming fatal.
const (
	openAttempts  = 3
	openBaseDelay = 100 * time.Millisecond
)

// ConnectivityError marks a store that could not be reached after the
// bounded retries. Callers use errors.As to distinguish it from data
// errors: connectivity aborts only the query engine, never the run.
type ConnectivityError struct {
	Path string
	Err  error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("store at %s unreachable: %v", e.Path, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Store wraps the SQLite connection for one run.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path, applies pragmas and
// the schema, and verifies connectivity with bounded retries.
//
// Idempotent - safe to call on an existing database file.
func Open(path string) (*Store, error) {
	return open(path, func(d time.Duration) { time.Sleep(d) })
}

func open(path string, sleep func(time.Duration)) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, &ConnectivityError{Path: path, Err: err}
	}

	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := pingWithRetry(db, sleep); err != nil {
		db.Close()
		return nil, &ConnectivityError{Path: path, Err: err}
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

func pingWithRetry(db *sql.DB, sleep func(time.Duration)) error {
	var err error
	delay := openBaseDelay
	for attempt := 0; attempt < openAttempts; attempt++ {
		if attempt > 0 {
			sleep(delay)
			delay *= 2
		}
		if err = db.Ping(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("ping failed after %d attempts: %w", openAttempts, err)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close releases the connection. The store is a scoped resource: the
// caller that opened it for a run closes it when both phases are done.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Query executes a read query. Callers must close the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not open")
	}
	return s.db.QueryContext(ctx, query, args...)
}
