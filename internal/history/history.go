// Package history maps the chat session's persisted state onto whole-value
// JSON blobs.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vidyasangam/assist/internal/chat"
	"github.com/vidyasangam/assist/internal/store"
)

const (
	KeyActive   = "active_conversation"
	KeyArchive  = "archived_sessions"
	KeyTipsSeen = "tips_seen"
)

// DefaultArchiveLimit caps the archived session list.
const DefaultArchiveLimit = 10

// Store implements chat.ConversationStore.
type Store struct {
	blobs  store.Blobs
	limit  int
	logger *slog.Logger
}

func New(blobs store.Blobs, limit int, logger *slog.Logger) *Store {
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}
	return &Store{blobs: blobs, limit: limit, logger: logger}
}

var _ chat.ConversationStore = (*Store)(nil)

func (s *Store) SaveActive(ctx context.Context, owner string, msgs []chat.Message) error {
	return s.put(ctx, owner, KeyActive, msgs)
}

func (s *Store) LoadActive(ctx context.Context, owner string) ([]chat.Message, error) {
	var msgs []chat.Message
	if _, err := s.get(ctx, owner, KeyActive, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// AppendArchive prepends sess and evicts the oldest entries beyond the limit.
func (s *Store) AppendArchive(ctx context.Context, owner string, sess chat.ArchivedSession) error {
	list, err := s.LoadArchive(ctx, owner)
	if err != nil {
		return err
	}

	list = append([]chat.ArchivedSession{sess}, list...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	return s.put(ctx, owner, KeyArchive, list)
}

// LoadArchive returns archived sessions newest first.
func (s *Store) LoadArchive(ctx context.Context, owner string) ([]chat.ArchivedSession, error) {
	var list []chat.ArchivedSession
	if _, err := s.get(ctx, owner, KeyArchive, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) TipsSeen(ctx context.Context, owner string) (bool, error) {
	var seen bool
	if _, err := s.get(ctx, owner, KeyTipsSeen, &seen); err != nil {
		return false, err
	}
	return seen, nil
}

func (s *Store) MarkTipsSeen(ctx context.Context, owner string) error {
	return s.put(ctx, owner, KeyTipsSeen, true)
}

func (s *Store) put(ctx context.Context, owner, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.blobs.Put(ctx, owner, key, data)
}

// get decodes the blob into v. A missing or undecodable blob is not an
// error; found reports whether a usable one existed.
func (s *Store) get(ctx context.Context, owner, key string, v any) (found bool, err error) {
	data, err := s.blobs.Get(ctx, owner, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding undecodable blob", "owner", owner, "key", key, "error", err)
		return false, nil
	}
	return true, nil
}
