package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS catalog_sequences (
	kind TEXT PRIMARY KEY,
	last_id BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS catalog_records (
	kind TEXT NOT NULL,
	id BIGINT NOT NULL,
	doc JSONB NOT NULL,
	PRIMARY KEY (kind, id)
);`

type postgresDocumentStorage struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
}

// GetPostgresPool connects to postgres, tests the connection and
// creates the catalog tables when missing.
func GetPostgresPool(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.Postgres.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection URL: %w", err)
	}
	if config.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = config.Postgres.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return pool, nil
}

// NewPostgresDocumentStorage provides an instance of postgres-based document storage.
func NewPostgresDocumentStorage(logger *zap.Logger, pool *pgxpool.Pool) DocumentStorage {
	return &postgresDocumentStorage{
		logger: logger,
		pool:   pool,
	}
}

func (ps *postgresDocumentStorage) NextID(ctx context.Context, kind string) (int64, error) {
	var id int64
	err := ps.pool.QueryRow(ctx,
		`INSERT INTO catalog_sequences (kind, last_id) VALUES ($1, 1)
		ON CONFLICT (kind) DO UPDATE SET last_id = catalog_sequences.last_id + 1
		RETURNING last_id`, kind).Scan(&id)
	return id, err
}

func (ps *postgresDocumentStorage) Put(ctx context.Context, kind string, id int64, doc []byte) error {
	_, err := ps.pool.Exec(ctx,
		`INSERT INTO catalog_records (kind, id, doc) VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE SET doc = EXCLUDED.doc`, kind, id, string(doc))
	return err
}

func (ps *postgresDocumentStorage) Get(ctx context.Context, kind string, id int64) ([]byte, error) {
	var doc []byte
	err := ps.pool.QueryRow(ctx,
		`SELECT doc::text FROM catalog_records WHERE kind = $1 AND id = $2`, kind, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return doc, err
}

func (ps *postgresDocumentStorage) Delete(ctx context.Context, kind string, id int64) error {
	tag, err := ps.pool.Exec(ctx, `DELETE FROM catalog_records WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (ps *postgresDocumentStorage) List(ctx context.Context, kind string) ([][]byte, error) {
	rows, err := ps.pool.Query(ctx,
		`SELECT doc::text FROM catalog_records WHERE kind = $1 ORDER BY id`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := [][]byte{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
