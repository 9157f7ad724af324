// Package journal persists log records to an append-only SQLite table so a
// session's faults and commands can be reviewed after the overlay exits.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Schema for the journal table. Open applies it.
const Schema = `
CREATE TABLE IF NOT EXISTS journal (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session TEXT NOT NULL,
	level TEXT NOT NULL,
	message TEXT NOT NULL,
	attrs TEXT NOT NULL DEFAULT '{}',
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_journal_ts ON journal(timestamp);
CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session);
`

// Entry is one persisted record.
type Entry struct {
	ID        int64
	Session   string
	Level     string
	Message   string
	Attrs     string // JSON object
	Timestamp time.Time
}

// Store writes entries asynchronously. Records queue on a buffered channel
// and are flushed in batches, so logging never waits on the disk.
type Store struct {
	db      *sql.DB
	session string
	ch      chan *Entry
	done    chan struct{}
	once    sync.Once

	// mu guards closed; senders hold it for reading so Close never closes
	// ch under a send.
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the journal database at path and starts a new
// session with a fresh identifier.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// One writer; modernc serialises anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init journal %s: %w", path, err)
	}
	return NewStore(db), nil
}

// NewStore creates a store over an initialised database.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:      db,
		session: uuid.NewString(),
		ch:      make(chan *Entry, 1024),
		done:    make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Session returns the identifier every entry of this store is tagged with.
func (s *Store) Session() string { return s.session }

// RecordAsync queues an entry. Non-blocking; drops if the buffer is full
// or the store is closed.
func (s *Store) RecordAsync(e *Entry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

// Close drains the buffer, stops the flush goroutine and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		<-s.done
		err = s.db.Close()
	})
	return err
}

// Recent returns the last n entries across all sessions, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	return Recent(ctx, s.db, n)
}

// Recent reads the last n entries from db, oldest first.
func Recent(ctx context.Context, db *sql.DB, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, session, level, message, attrs, timestamp
		FROM (SELECT * FROM journal ORDER BY id DESC LIMIT ?) ORDER BY id`, n)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.Session, &e.Level, &e.Message, &e.Attrs, &ts); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		e.Timestamp = time.UnixMicro(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]*Entry, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, e)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

// flushBatch writes a batch in one transaction. Failures go to the default
// logger, never back through the journal handler.
func (s *Store) flushBatch(batch []*Entry) {
	if len(batch) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		slog.Default().Error("journal: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO journal (session, level, message, attrs, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Default().Error("journal: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, e := range batch {
		if _, err := stmt.Exec(e.Session, e.Level, e.Message, e.Attrs, e.Timestamp.UnixMicro()); err != nil {
			slog.Default().Error("journal: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Default().Error("journal: commit", "error", err)
	}
}
