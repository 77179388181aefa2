// Package store keeps whole-value JSON blobs keyed by owner and logical key.
// Writes overwrite; the last writer wins.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for owner/key.
var ErrNotFound = errors.New("blob not found")

// Blobs is implemented by every backend.
type Blobs interface {
	Get(ctx context.Context, owner, key string) ([]byte, error)
	Put(ctx context.Context, owner, key string, value []byte) error
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS assist_blobs (
	owner      TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      %s NOT NULL,
	updated_at %s NOT NULL,
	PRIMARY KEY (owner, key)
)`
