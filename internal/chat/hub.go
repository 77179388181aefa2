package chat

import (
	"context"
	"sync"
	"time"
)

// Hub hands out one Session per owner, loading it from the store on first
// access.
type Hub struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewHub(deps Deps) *Hub {
	return &Hub{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

func (h *Hub) lookup(owner string) *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[owner]
}

// Session returns the owner's session. A missing, empty or unreadable stored
// conversation starts from the greeting; the initial suggestion set is
// generated in the background.
func (h *Hub) Session(ctx context.Context, owner string) *Session {
	if s := h.lookup(owner); s != nil {
		s.touch()
		return s
	}

	msgs, err := h.deps.Store.LoadActive(ctx, owner)
	if err != nil {
		h.deps.Logger.Error("failed to load conversation, starting fresh", "owner", owner, "error", err)
		msgs = nil
	}

	h.mu.Lock()
	if s, ok := h.sessions[owner]; ok {
		// Another request loaded it while we were reading.
		h.mu.Unlock()
		s.touch()
		return s
	}
	s := newSession(owner, h.deps, msgs)
	h.sessions[owner] = s
	h.mu.Unlock()

	s.mu.Lock()
	gen, turns, kind := s.generation, toTurns(s.messages), kindFor(s.messages)
	s.mu.Unlock()
	s.refreshSuggestions(context.WithoutCancel(ctx), gen, kind, turns)

	h.deps.Logger.Info("session loaded", "owner", owner, "messages", len(turns), "restored", len(msgs) > 0)
	return s
}

// EvictIdle drops sessions that have been idle for at least ttl and returns
// how many were dropped. Their state is already persisted, so the next
// access reloads it from the store.
func (h *Hub) EvictIdle(ttl time.Duration) int {
	now := time.Now
	if h.deps.Now != nil {
		now = h.deps.Now
	}
	cutoff := now().Add(-ttl)

	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	for owner, s := range h.sessions {
		at, ok := s.idleSince()
		if !ok || at.After(cutoff) {
			continue
		}
		delete(h.sessions, owner)
		evicted++
	}
	return evicted
}

// RunEviction sweeps idle sessions every ttl/2 until ctx is done. A ttl of
// zero disables eviction.
func (h *Hub) RunEviction(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.EvictIdle(ttl); n > 0 {
				h.deps.Logger.Info("evicted idle sessions", "count", n)
			}
		}
	}
}

// Wait blocks until every session's background work has finished.
func (h *Hub) Wait() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Wait()
	}
}
