package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/waterkeeper/internal/dbx"
	"github.com/dmitrijs2005/waterkeeper/internal/filex"
	"github.com/dmitrijs2005/waterkeeper/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type sqlQueries struct {
	get       string
	getLocked string
	set       string
	del       string
}

var sqliteQueries = sqlQueries{
	get:       `SELECT value FROM blobs WHERE key = ?`,
	getLocked: `SELECT value FROM blobs WHERE key = ?`,
	set: `INSERT INTO blobs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
	del: `DELETE FROM blobs WHERE key = ?`,
}

var postgresQueries = sqlQueries{
	get:       `SELECT value FROM blobs WHERE key = $1`,
	getLocked: `SELECT value FROM blobs WHERE key = $1 FOR UPDATE`,
	set: `INSERT INTO blobs (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()`,
	del: `DELETE FROM blobs WHERE key = $1`,
}

// SQLStore keeps blobs in the "blobs" table of a SQLite or PostgreSQL
// database.
type SQLStore struct {
	db *sql.DB
	q  sqlQueries
}

func newSQLStore(db *sql.DB, q sqlQueries) *SQLStore {
	return &SQLStore{db: db, q: q}
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("failed to prepare sqlite path: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer at a time keeps read-modify-write transactions from
	// failing with SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, migrations.DialectSQLite, migrations.SQLite, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, sqliteQueries), nil
}

// OpenPostgres connects through the pgx stdlib driver and migrates the
// database.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := migrations.Up(ctx, db, migrations.DialectPostgres, migrations.Postgres, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStore(db, postgresQueries), nil
}

func get(ctx context.Context, db dbx.DBTX, query, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db dbx.DBTX, query, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set blob[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	return get(ctx, s.db, s.q.get, key)
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, s.db, s.q.set, key, value)
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.q.del, key); err != nil {
		return fmt.Errorf("failed to delete blob[%s]: %w", key, err)
	}
	return nil
}

// Update reads and rewrites key inside one transaction. On PostgreSQL the
// existing row is locked with SELECT ... FOR UPDATE.
func (s *SQLStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		cur, err := get(ctx, tx, s.q.getLocked, key)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		return set(ctx, tx, s.q.set, key, next)
	})
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
