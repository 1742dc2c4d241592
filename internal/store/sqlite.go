package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/contact-enrich/internal/db"
	"github.com/sells-group/contact-enrich/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: conn}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id                TEXT PRIMARY KEY,
	linkedin_username TEXT NOT NULL UNIQUE,
	spreadsheet_id    TEXT NOT NULL,
	row_number        INTEGER NOT NULL,
	data              TEXT NOT NULL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_contacts_spreadsheet ON contacts(spreadsheet_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertContact(ctx context.Context, c *model.ContactData) error {
	if err := validateContact(c); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal contact")
	}
	query, err := contactUpsertSQL(db.Question)
	if err != nil {
		return eris.Wrap(err, "sqlite: build upsert")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, query,
		uuid.New().String(), c.LinkedInUsername, c.SpreadsheetID, c.RowNumber, string(data), now, now,
	)
	return eris.Wrapf(err, "sqlite: upsert contact %s", c.LinkedInUsername)
}

func (s *SQLiteStore) GetContact(ctx context.Context, username string) (*ContactRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, linkedin_username, spreadsheet_id, row_number, data, created_at, updated_at
		 FROM contacts WHERE linkedin_username = ?`,
		username,
	)
	rec, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get contact %s", username)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get contact %s", username)
	}
	return rec, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, filter ContactFilter) ([]ContactRecord, error) {
	query := `SELECT id, linkedin_username, spreadsheet_id, row_number, data, created_at, updated_at
		FROM contacts WHERE 1=1`
	var args []any

	if filter.SpreadsheetID != "" {
		query += ` AND spreadsheet_id = ?`
		args = append(args, filter.SpreadsheetID)
	}
	query += ` ORDER BY updated_at DESC, linkedin_username LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close() //nolint:errcheck

	var out []ContactRecord
	for rows.Next() {
		rec, err := scanContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanContact(row scannable) (*ContactRecord, error) {
	var rec ContactRecord
	var data string
	if err := row.Scan(&rec.ID, &rec.LinkedInUsername, &rec.SpreadsheetID, &rec.RowNumber, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Contact = &model.ContactData{}
	if err := json.Unmarshal([]byte(data), rec.Contact); err != nil {
		return nil, eris.Wrap(err, "unmarshal contact")
	}
	return &rec, nil
}
