package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/okian/hypetorch/internal/domain/document"
	"github.com/okian/hypetorch/pkg/metrics"
)

// PostgresStore keeps the document as one row of a single table. The body is
// stored as text so the serialized form round-trips byte for byte.
type PostgresStore struct {
	db    *sql.DB
	name  string
	table string
	now   func() time.Time
}

// NewPostgresStore opens dsn, verifies the connection and creates the table if needed.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := NewPostgresStoreFromDB(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreFromDB wraps an open handle and ensures the schema exists.
func NewPostgresStoreFromDB(ctx context.Context, db *sql.DB, opts ...Option) (*PostgresStore, error) {
	cfg := applyOptions(opts)
	s := &PostgresStore{
		db:    db,
		name:  cfg.key,
		table: pq.QuoteIdentifier(cfg.table),
		now:   cfg.now,
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		name       TEXT PRIMARY KEY,
		body       TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Backend implements Store.
func (s *PostgresStore) Backend() string { return BackendPostgres }

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) (doc *document.Document, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendPostgres, "load", err, time.Since(start)) }()

	var body string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM `+s.table+` WHERE name = $1`, s.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return document.Unpopulated(), nil
		}
		return nil, fmt.Errorf("%w: select %s: %v", ErrStorageRead, s.name, err)
	}
	doc, err = document.Parse([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrStorageRead, s.name, err)
	}
	return doc, nil
}

// Replace implements Store. The upsert is a single statement, so readers see
// either the old row or the new one.
func (s *PostgresStore) Replace(ctx context.Context, doc *document.Document) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOperation(BackendPostgres, "replace", err, time.Since(start)) }()

	if doc == nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, ErrNilDocument)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.table+` (name, body, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		s.name, string(doc.Bytes()), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrStorageWrite, s.name, err)
	}
	return nil
}

// LastModified implements Store.
func (s *PostgresStore) LastModified(ctx context.Context) (time.Time, bool, error) {
	var updated time.Time
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM `+s.table+` WHERE name = $1`, s.name).Scan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%w: select updated_at: %v", ErrStorageRead, err)
	}
	return updated, true, nil
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
