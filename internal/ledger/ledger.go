// Package ledger journals file operations on conversations so they can be
// listed and undone.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Op is a journaled file operation.
type Op string

const (
	OpArchive Op = "archive"
	OpMove    Op = "move"
	OpDelete  Op = "delete"
	OpRestore Op = "restore"
)

// ValidOps are the operations the ledger accepts.
var ValidOps = map[Op]bool{
	OpArchive: true,
	OpMove:    true,
	OpDelete:  true,
	OpRestore: true,
}

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("ledger entry not found")

// Entry is one journaled operation.
type Entry struct {
	ID         string     `json:"id"`
	Op         Op         `json:"op"`
	Source     string     `json:"source"`
	Dest       string     `json:"dest,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RestoredAt *time.Time `json:"restored_at,omitempty"`
}

// ListParams filters List.
type ListParams struct {
	Op    Op
	Limit int
}

// Ledger records file operations.
type Ledger interface {
	// Record journals an operation that has completed.
	Record(ctx context.Context, op Op, source, dest string) (*Entry, error)

	// Get returns the entry with the given id.
	Get(ctx context.Context, id string) (*Entry, error)

	// MarkRestored flags an entry as undone.
	MarkRestored(ctx context.Context, id string) error
}

// SQLiteLedger implements Ledger using SQLite.
type SQLiteLedger struct {
	db      *sql.DB
	entropy *rand.Rand
}

var _ Ledger = (*SQLiteLedger)(nil)

// Open opens or creates a ledger database at the given path.
func Open(dbPath string) (*SQLiteLedger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	l := &SQLiteLedger{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *SQLiteLedger) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy).String()
}

func (l *SQLiteLedger) migrate() error {
	_, err := l.db.Exec(`
	CREATE TABLE IF NOT EXISTS operations (
		id          TEXT PRIMARY KEY,
		op          TEXT NOT NULL,
		source      TEXT NOT NULL,
		dest        TEXT,
		created_at  TEXT NOT NULL,
		restored_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_operations_created ON operations(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_operations_op ON operations(op);
	`)
	return err
}

func (l *SQLiteLedger) Record(ctx context.Context, op Op, source, dest string) (*Entry, error) {
	if !ValidOps[op] {
		return nil, fmt.Errorf("invalid op %q (valid: archive, move, delete, restore)", op)
	}
	e := &Entry{ID: l.newID(), Op: op, Source: source, Dest: dest, CreatedAt: time.Now().UTC()}

	var destPtr *string
	if dest != "" {
		destPtr = &dest
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO operations (id, op, source, dest, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, string(op), source, destPtr, e.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", op, err)
	}
	return e, nil
}

func (l *SQLiteLedger) Get(ctx context.Context, id string) (*Entry, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, op, source, dest, created_at, restored_at FROM operations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns entries newest first.
func (l *SQLiteLedger) List(ctx context.Context, p ListParams) ([]Entry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, op, source, dest, created_at, restored_at FROM operations`
	args := []interface{}{}
	if p.Op != "" {
		query += ` WHERE op = ?`
		args = append(args, string(p.Op))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *SQLiteLedger) MarkRestored(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := l.db.ExecContext(ctx,
		`UPDATE operations SET restored_at = ? WHERE id = ? AND restored_at IS NULL`, now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s (or already restored)", ErrNotFound, id)
	}
	return nil
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var op, createdAt string
	var dest, restoredAt sql.NullString

	if err := row.Scan(&e.ID, &op, &e.Source, &dest, &createdAt, &restoredAt); err != nil {
		return e, err
	}
	e.Op = Op(op)
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if dest.Valid {
		e.Dest = dest.String
	}
	if restoredAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, restoredAt.String)
		e.RestoredAt = &t
	}
	return e, nil
}
