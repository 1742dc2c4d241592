package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrich/internal/db"
	"github.com/sells-group/contact-enrich/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const selectContact = `SELECT id, linkedin_username, spreadsheet_id, row_number, data, created_at, updated_at FROM contacts`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS contacts (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	linkedin_username TEXT NOT NULL UNIQUE,
	spreadsheet_id    TEXT NOT NULL,
	row_number        INTEGER NOT NULL,
	data              JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_contacts_spreadsheet ON contacts(spreadsheet_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertContact(ctx context.Context, c *model.ContactData) error {
	if err := validateContact(c); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal contact")
	}
	query, err := contactUpsertSQL(db.Dollar)
	if err != nil {
		return eris.Wrap(err, "postgres: build upsert")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx, query,
		uuid.New().String(), c.LinkedInUsername, c.SpreadsheetID, c.RowNumber, data, now, now,
	)
	return eris.Wrapf(err, "postgres: upsert contact %s", c.LinkedInUsername)
}

func (s *PostgresStore) GetContact(ctx context.Context, username string) (*ContactRecord, error) {
	row := s.pool.QueryRow(ctx, selectContact+` WHERE linkedin_username = $1`, username)
	rec, err := scanPgContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get contact %s", username)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get contact %s", username)
	}
	return rec, nil
}

func (s *PostgresStore) ListContacts(ctx context.Context, filter ContactFilter) ([]ContactRecord, error) {
	query := selectContact + ` WHERE ($1 = '' OR spreadsheet_id = $1) ORDER BY updated_at DESC, linkedin_username LIMIT $2 OFFSET $3`
	offset := max(filter.Offset, 0)

	rows, err := s.pool.Query(ctx, query, filter.SpreadsheetID, listLimit(filter), offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var out []ContactRecord
	for rows.Next() {
		rec, err := scanPgContact(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		out = append(out, *rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

func scanPgContact(row pgx.Row) (*ContactRecord, error) {
	var rec ContactRecord
	var data []byte
	if err := row.Scan(&rec.ID, &rec.LinkedInUsername, &rec.SpreadsheetID, &rec.RowNumber, &data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	rec.Contact = &model.ContactData{}
	if err := json.Unmarshal(data, rec.Contact); err != nil {
		return nil, eris.Wrap(err, "unmarshal contact")
	}
	return &rec, nil
}
