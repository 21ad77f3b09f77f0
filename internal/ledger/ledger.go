package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cleared-dev/stmtconv/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS exported (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	amount      TEXT NOT NULL,
	source      TEXT NOT NULL,
	exported_at TEXT NOT NULL
)`

// Entry is one remembered record.
type Entry struct {
	ID         string
	Date       string
	Amount     string
	Source     string
	ExportedAt time.Time
}

// Ledger remembers the identifiers of records already exported, so that
// overlapping statements only yield new transactions.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the SQLite ledger at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return &Ledger{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Seen reports whether id has been exported before.
func (l *Ledger) Seen(ctx context.Context, id string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exported WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return n > 0, nil
}

// Filter returns the records whose identifiers are not in the ledger, in order.
func (l *Ledger) Filter(ctx context.Context, records []model.Record) ([]model.Record, error) {
	var fresh []model.Record
	for _, r := range records {
		seen, err := l.Seen(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		if !seen {
			fresh = append(fresh, r)
		}
	}
	return fresh, nil
}

// Remember records the identifiers of records in a single transaction.
// Identifiers already present are left untouched.
func (l *Ledger) Remember(ctx context.Context, source string, records []model.Record) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning ledger transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO exported (id, date, amount, source, exported_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing ledger insert: %w", err)
	}
	defer stmt.Close()

	at := l.now().UTC().Format(time.RFC3339)
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Date.Format("2006-01-02"), r.Amount.StringFixed(2), source, at); err != nil {
			return fmt.Errorf("remembering %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	return nil
}

// Entries returns every remembered record ordered by export time and id.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, date, amount, source, exported_at FROM exported ORDER BY exported_at, id`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &e.Source, &at); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		e.ExportedAt, err = time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("parsing exported_at %q: %w", at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
