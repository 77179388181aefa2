package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Blobs {
	t.Helper()

	lite, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "assist.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { lite.Close() })

	return map[string]Blobs{
		"memory": NewMemory(),
		"sqlite": lite,
	}
}

func TestBlobs_GetMissing(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(context.Background(), "owner-1", "active_conversation")
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestBlobs_PutOverwrites(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := b.Put(ctx, "owner-1", "k", []byte(`[1]`)); err != nil {
				t.Fatalf("put failed: %v", err)
			}
			if err := b.Put(ctx, "owner-1", "k", []byte(`[1,2]`)); err != nil {
				t.Fatalf("second put failed: %v", err)
			}

			got, err := b.Get(ctx, "owner-1", "k")
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if string(got) != `[1,2]` {
				t.Errorf("expected last write to win, got %s", got)
			}
		})
	}
}

func TestBlobs_OwnersAreIsolated(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if err := b.Put(ctx, "alice", "k", []byte(`"a"`)); err != nil {
				t.Fatalf("put failed: %v", err)
			}
			if _, err := b.Get(ctx, "bob", "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected bob to see nothing, got %v", err)
			}
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	value := []byte("abc")
	m.Put(ctx, "o", "k", value)
	value[0] = 'x'

	got, _ := m.Get(ctx, "o", "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed through caller slice: %s", got)
	}
	got[1] = 'y'
	again, _ := m.Get(ctx, "o", "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %s", again)
	}
}
