package db

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB owns the single SQLite handle shared by every request. It is opened once
// at startup and closed at shutdown; the embedded Store runs statements
// directly on the handle, WithTx runs them inside a transaction.
type DB struct {
	*Store
	conn *sqlx.DB
	path string
}

type options struct {
	busyTimeout  time.Duration
	nativeUpsert bool
}

// Option tweaks how NewDB opens the store.
type Option func(*options)

// WithBusyTimeout sets how long a statement waits on a locked database file.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) { o.busyTimeout = d }
}

// WithNativeUpsert chooses between a single INSERT ... ON CONFLICT statement
// (true) and insert-then-update-on-conflict (false) for keyed upserts.
func WithNativeUpsert(on bool) Option {
	return func(o *options) { o.nativeUpsert = on }
}

// NewDB opens (creating if needed) the SQLite database at path and applies
// pending migrations.
func NewDB(path string, opts ...Option) (*DB, error) {
	o := options{busyTimeout: 5 * time.Second, nativeUpsert: true}
	for _, opt := range opts {
		opt(&o)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sqlx.Open("sqlite", dsn(path, o.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serialises writers anyway and this keeps
	// "database is locked" out of concurrent request paths.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		Store: &Store{ext: conn, nativeUpsert: o.nativeUpsert},
		conn:  conn,
		path:  path,
	}
	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	if path != ":memory:" {
		q.Add("_pragma", "journal_mode(WAL)")
	}
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// WithTx runs fn inside one transaction. fn's error rolls it back and is
// returned unchanged.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Safe to call even if committed

	if err := fn(&Store{ext: tx, nativeUpsert: db.nativeUpsert}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

// Ping checks the connection is still usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Conn exposes the underlying handle for diagnostics and tests.
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

// Path is the database file the store was opened on.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) Close() error {
	return db.conn.Close()
}
