package journal

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("journal: entry not found")

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// List limits.
const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// Entry is one failed batch.
type Entry struct {
	ID        string    `json:"id"`
	Transport string    `json:"transport"`
	Target    string    `json:"target"`
	Lines     int       `json:"lines"`
	Payload   []byte    `json:"-"`
	Error     string    `json:"error"`
	CreatedAt time.Time `json:"created_at"`
}

// Store reads and writes journal entries in the failed_batches table.
// It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// NewStore creates a journal store on a migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts an entry and returns its id.
//
// ID and CreatedAt are generated when empty. Lines is derived from the
// payload when zero.
func (s *Store) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Lines == 0 {
		e.Lines = countLines(e.Payload)
	}
	if e.Payload == nil {
		e.Payload = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failed_batches (id, transport, target, line_count, payload, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Transport, e.Target, e.Lines, e.Payload, e.Error,
		e.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("inserting journal entry: %w", err)
	}
	return e.ID, nil
}

// List returns up to limit entries, most recent first.
// A limit below 1 means the default of 50; limits above 1000 are clamped.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, transport, target, line_count, payload, error, created_at
		 FROM failed_batches ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Transport, &e.Target, &e.Lines, &e.Payload, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return entries, nil
}

// Delete removes the entry with the given id.
// Returns ErrNotFound if no such entry exists.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM failed_batches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting journal entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting journal entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of entries in the journal.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM failed_batches").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting journal entries: %w", err)
	}
	return n, nil
}

// countLines counts non-empty lines in a payload.
func countLines(payload []byte) int {
	n := 0
	for line := range bytes.SplitSeq(payload, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}
