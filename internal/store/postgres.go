package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(schema, "JSONB", "TIMESTAMPTZ")); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}

func (s *Postgres) Get(ctx context.Context, owner, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM assist_blobs
		WHERE owner = $1 AND key = $2`,
		owner, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", owner, key, err)
	}
	return value, nil
}

func (s *Postgres) Put(ctx context.Context, owner, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assist_blobs (owner, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner, key)
		DO UPDATE SET
			value = $3,
			updated_at = now()`,
		owner, key, value,
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", owner, key, err)
	}
	return nil
}
