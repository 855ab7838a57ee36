package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version of every history
// database. Bump it together with schema.sql.
const schemaVersion = 1

// ErrSchemaVersion is returned when a history database was written with a
// schema this build does not understand.
var ErrSchemaVersion = errors.New("unsupported history schema")

// Store is a run history database.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path for recording, creating it and its
// tables when missing. Opening an existing database again is a no-op.
func Open(path string) (*Store, error) {
	db, err := connect(path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if err := execAll(db, pragmas); err != nil {
		db.Close()
		return nil, err
	}

	version, err := userVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	switch {
	case version > schemaVersion:
		db.Close()
		return nil, fmt.Errorf("%s: %w: version %d, this build supports %d", path, ErrSchemaVersion, version, schemaVersion)
	case version < schemaVersion:
		stamp := fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)
		if err := execAll(db, []string{schemaSQL, stamp}); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing history database for queries. It never
// creates the file and never changes the schema.
func OpenReadOnly(path string) (*Store, error) {
	db, err := connect("file:" + path + "?mode=ro")
	if err != nil {
		return nil, err
	}
	if err := execAll(db, []string{"PRAGMA busy_timeout = 5000"}); err != nil {
		db.Close()
		return nil, err
	}

	version, err := userVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if version != schemaVersion {
		db.Close()
		return nil, fmt.Errorf("%s: %w: version %d, this build supports %d", path, ErrSchemaVersion, version, schemaVersion)
	}
	return &Store{db: db}, nil
}

// Close releases the connection. Closing twice is allowed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func execAll(db *sql.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// verifyPragma checks a pragma value. Used by tests.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
