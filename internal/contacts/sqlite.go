package contacts

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"zvgcli/pkg/contracts/domain"
)

const contactsSchema = `
CREATE TABLE IF NOT EXISTS contacts (
	listing_id   TEXT PRIMARY KEY,
	contacted_at TEXT NOT NULL
);`

// SQLiteStore persists the history in a local SQLite database. Save replaces
// the whole table inside one transaction, mirroring the mapping semantics of
// the other stores.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at path and
// ensures the contacts table exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open contacts database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping contacts database: %w", err)
	}
	if _, err := db.ExecContext(ctx, contactsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create contacts schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (domain.ContactHistory, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT listing_id, contacted_at FROM contacts`)
	if err != nil {
		return nil, fmt.Errorf("load contact history: %w", err)
	}
	defer rows.Close()

	history := make(domain.ContactHistory)
	for rows.Next() {
		var id, ts string
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("scan contact row: %w", err)
		}
		history[id] = ts
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact rows: %w", err)
	}
	return history, nil
}

func (s *SQLiteStore) Save(ctx context.Context, history domain.ContactHistory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin contacts transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("clear contact history: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO contacts (listing_id, contacted_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare contact insert: %w", err)
	}
	defer stmt.Close()
	for id, ts := range history {
		if _, err := stmt.ExecContext(ctx, id, ts); err != nil {
			return fmt.Errorf("insert contact %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contact history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
