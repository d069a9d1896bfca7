package cockpit

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS pending_writes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	method TEXT NOT NULL,
	path TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_pending_created ON pending_writes(created_at);
`

// PendingWriteRecord is one queued mutation waiting for the backend.
type PendingWriteRecord struct {
	ID        int64
	Method    string
	Path      string
	Body      string
	CreatedAt time.Time
}

// LocalStore persists optimistic writes that could not reach the backend so
// they survive a client restart.
type LocalStore struct {
	db *sql.DB
}

// OpenLocalStore opens (and migrates) the sqlite queue at dbPath.
func OpenLocalStore(dbPath string) (*LocalStore, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open local db: %w", err)
	}
	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply local schema: %w", err)
	}
	return &LocalStore{db: db}, nil
}

// Close closes the underlying database.
func (l *LocalStore) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

// Enqueue records a mutation that has been applied locally but not remotely.
func (l *LocalStore) Enqueue(method, path, body string) error {
	if l == nil {
		return nil
	}
	_, err := l.db.Exec(
		`INSERT INTO pending_writes (method, path, body) VALUES (?, ?, ?)`,
		method, path, body)
	if err != nil {
		return fmt.Errorf("enqueue pending write: %w", err)
	}
	return nil
}

// Pending returns the queued writes oldest first.
func (l *LocalStore) Pending() ([]PendingWriteRecord, error) {
	if l == nil {
		return nil, nil
	}
	rows, err := l.db.Query(
		`SELECT id, method, path, body, created_at FROM pending_writes ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list pending writes: %w", err)
	}
	defer rows.Close()

	var records []PendingWriteRecord
	for rows.Next() {
		var rec PendingWriteRecord
		if err := rows.Scan(&rec.ID, &rec.Method, &rec.Path, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending write: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Flush replays each queued write through apply and deletes the ones that
// succeed. The first failure stops the drain so ordering is preserved.
func (l *LocalStore) Flush(apply func(rec PendingWriteRecord) error) error {
	if l == nil {
		return nil
	}
	records, err := l.Pending()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := apply(rec); err != nil {
			return fmt.Errorf("replay %s %s: %w", rec.Method, rec.Path, err)
		}
		if _, err := l.db.Exec(`DELETE FROM pending_writes WHERE id = ?`, rec.ID); err != nil {
			return fmt.Errorf("dequeue pending write: %w", err)
		}
	}
	if len(records) > 0 {
		slog.Info("Cockpit: drained pending writes", "count", len(records))
	}
	return nil
}
