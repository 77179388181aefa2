package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vidyasangam/assist/internal/gateway"
	"github.com/vidyasangam/assist/internal/suggest"
	"github.com/vidyasangam/assist/internal/typing"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrBusy            = errors.New("session is busy")
	ErrSessionNotFound = errors.New("archived session not found")
)

// Deps are shared by every session of a Hub. Publisher and Now are optional.
type Deps struct {
	Completer gateway.Completer
	Suggester Suggester
	Presenter *typing.Presenter
	Store     ConversationStore
	Publisher Publisher
	Logger    *slog.Logger
	Now       func() time.Time
}

// Session owns one owner's conversation and drives each turn through
// completion, typing reveal, persistence and suggestion refresh.
type Session struct {
	owner     string
	llm       gateway.Completer
	suggester Suggester
	presenter *typing.Presenter
	store     ConversationStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	messages    []Message
	state       State
	generation  uint64
	typing      string
	suggestions []string
	subs        map[string]chan Event
	pending     int       // background goroutines still running
	lastActive  time.Time // last access or state change

	// saveMu orders writes so the store always ends with the latest snapshot.
	saveMu sync.Mutex
	wg     sync.WaitGroup
}

// Snapshot is a consistent copy of a session's visible state.
type Snapshot struct {
	Owner       string    `json:"owner"`
	Messages    []Message `json:"messages"`
	State       State     `json:"state"`
	Typing      string    `json:"typing,omitempty"`
	Suggestions []string  `json:"suggestions"`
	Generation  uint64    `json:"generation"`
}

func newSession(owner string, deps Deps, msgs []Message) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		owner:     owner,
		llm:       deps.Completer,
		suggester: deps.Suggester,
		presenter: deps.Presenter,
		store:     deps.Store,
		publisher: deps.Publisher,
		logger:    deps.Logger.With("owner", owner),
		now:       now,
		state:     StateIdle,
		subs:      make(map[string]chan Event),
	}
	s.lastActive = now()
	if len(msgs) == 0 {
		msgs = []Message{s.seed(greetingText)}
	}
	s.messages = msgs
	return s
}

func (s *Session) seed(text string) Message {
	return Message{Role: RoleAssistant, Content: text, Timestamp: s.now().UTC()}
}

// SendUserMessage appends a user message and starts the reply in the
// background. The reply outlives ctx cancellation.
func (s *Session) SendUserMessage(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return Message{}, ErrBusy
	}
	msg := Message{Role: RoleUser, Content: text, Timestamp: s.now().UTC()}
	s.messages = append(s.messages, msg)
	s.generation++
	gen := s.generation
	s.suggestions = nil
	s.emit(Event{Type: EventMessage, Message: &msg})
	s.emit(Event{Type: EventSuggestions})
	s.setState(StateAwaitingCompletion)
	turns := toTurns(s.messages)
	s.mu.Unlock()

	s.logger.Info("user message appended", "generation", gen, "length", len(text))
	s.persist(ctx)

	bg := context.WithoutCancel(ctx)
	s.spawn(func() { s.runTurn(bg, gen, turns) })

	return msg, nil
}

// SendSuggested sends a previously offered suggestion exactly as if it had
// been typed.
func (s *Session) SendSuggested(ctx context.Context, question string) (Message, error) {
	return s.SendUserMessage(ctx, question)
}

func (s *Session) runTurn(ctx context.Context, gen uint64, turns []gateway.Turn) {
	start := s.now()
	reply, err := s.llm.Complete(ctx, SystemPrompt, turns)
	if err != nil {
		s.logger.Warn("completion failed", "generation", gen, "error", err)
		s.fail(ctx, gen)
		return
	}
	s.logger.Info("completion received", "generation", gen, "length", len(reply), "latency_ms", s.now().Sub(start).Milliseconds())

	if !s.beginReveal(gen) {
		return
	}
	if err := s.presenter.Reveal(ctx, reply, func(revealed string) {
		s.mu.Lock()
		if gen == s.generation {
			s.typing = revealed
			s.emit(Event{Type: EventTyping, Typing: revealed})
		}
		s.mu.Unlock()
	}); err != nil {
		s.logger.Warn("reveal interrupted, finalizing with full text", "generation", gen, "error", err)
	}
	s.finalize(ctx, gen, reply)
}

// fail appends the fixed error reply in place of a real one.
func (s *Session) fail(ctx context.Context, gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale failure", "generation", gen)
		return
	}
	msg := Message{Role: RoleAssistant, Content: errorText, Timestamp: s.now().UTC()}
	s.messages = append(s.messages, msg)
	s.emit(Event{Type: EventMessage, Message: &msg})
	s.setState(StateIdle)
	turns := toTurns(s.messages)
	s.mu.Unlock()

	s.persist(ctx)
	s.publishTurn(gen, true)
	s.refreshSuggestions(ctx, gen, suggest.Error, turns)
}

// beginReveal appends the empty assistant placeholder. Persistence is
// suppressed until finalize.
func (s *Session) beginReveal(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("discarding stale reply", "generation", gen)
		return false
	}
	placeholder := Message{Role: RoleAssistant, Timestamp: s.now().UTC()}
	s.messages = append(s.messages, placeholder)
	s.typing = ""
	s.emit(Event{Type: EventMessage, Message: &placeholder})
	s.setState(StateTypingReveal)
	return true
}

func (s *Session) finalize(ctx context.Context, gen uint64, reply string) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding stale reveal", "generation", gen)
		return
	}
	last := &s.messages[len(s.messages)-1]
	last.Content = reply
	msg := *last
	s.typing = ""
	s.emit(Event{Type: EventFinalized, Message: &msg})
	s.setState(StateIdle)
	turns := toTurns(s.messages)
	s.mu.Unlock()

	s.persist(ctx)
	s.publishTurn(gen, false)
	s.refreshSuggestions(ctx, gen, suggest.Conversation, turns)
}

// StartNewChat archives a non-trivial conversation and reseeds it with the
// greeting. The returned session is nil when nothing was archived.
func (s *Session) StartNewChat(ctx context.Context) (*ArchivedSession, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	var archived *ArchivedSession
	if len(s.messages) > 1 {
		at := s.now().UTC()
		archived = &ArchivedSession{
			ID:        newArchiveID(),
			Timestamp: at,
			Title:     archiveTitle(s.messages, at),
			Messages:  cloneMessages(s.messages),
		}
	}
	gen, turns := s.reset([]Message{s.seed(greetingText)})
	s.mu.Unlock()

	// The conversation is already reset, so the writes must not be cut short
	// by the caller going away.
	ctx = context.WithoutCancel(ctx)
	if archived != nil {
		if err := s.store.AppendArchive(ctx, s.owner, *archived); err != nil {
			s.logger.Error("failed to archive session", "session_id", archived.ID, "error", err)
		} else {
			s.logger.Info("session archived", "session_id", archived.ID, "messages", len(archived.Messages))
		}
		s.publish(SubjectSessionArchived, map[string]any{
			"owner":      s.owner,
			"session_id": archived.ID,
			"title":      archived.Title,
			"messages":   len(archived.Messages),
			"timestamp":  archived.Timestamp.Format(time.RFC3339),
		})
	}

	s.persist(ctx)
	s.refreshSuggestions(ctx, gen, suggest.Initial, turns)
	return archived, nil
}

// ClearCurrentChat reseeds the conversation without archiving it.
func (s *Session) ClearCurrentChat(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	gen, turns := s.reset([]Message{s.seed(clearedText)})
	s.mu.Unlock()

	s.logger.Info("conversation cleared", "generation", gen)
	s.persist(ctx)
	s.refreshSuggestions(context.WithoutCancel(ctx), gen, suggest.Initial, turns)
	return nil
}

// RestoreSession replaces the conversation with an archived snapshot.
func (s *Session) RestoreSession(ctx context.Context, id string) error {
	list, err := s.store.LoadArchive(ctx, s.owner)
	if err != nil {
		return fmt.Errorf("load archive: %w", err)
	}
	var found *ArchivedSession
	for i := range list {
		if list[i].ID == id {
			found = &list[i]
			break
		}
	}
	if found == nil {
		return ErrSessionNotFound
	}

	msgs := cloneMessages(found.Messages)
	if len(msgs) == 0 {
		msgs = []Message{s.seed(greetingText)}
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	gen, turns := s.reset(msgs)
	s.mu.Unlock()

	s.logger.Info("session restored", "session_id", id, "generation", gen)
	s.persist(ctx)
	s.refreshSuggestions(context.WithoutCancel(ctx), gen, kindFor(msgs), turns)
	return nil
}

// reset must be called with s.mu held.
func (s *Session) reset(msgs []Message) (uint64, []gateway.Turn) {
	s.messages = msgs
	s.generation++
	s.typing = ""
	s.suggestions = nil
	s.emit(Event{Type: EventReset, Messages: cloneMessages(msgs)})
	return s.generation, toTurns(msgs)
}

// Archive lists archived sessions, newest first.
func (s *Session) Archive(ctx context.Context) ([]ArchivedSession, error) {
	list, err := s.store.LoadArchive(ctx, s.owner)
	if err != nil {
		return nil, fmt.Errorf("load archive: %w", err)
	}
	if list == nil {
		list = []ArchivedSession{}
	}
	return list, nil
}

func (s *Session) TipsSeen(ctx context.Context) (bool, error) {
	return s.store.TipsSeen(ctx, s.owner)
}

func (s *Session) MarkTipsSeen(ctx context.Context) error {
	return s.store.MarkTipsSeen(ctx, s.owner)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	suggestions := append([]string{}, s.suggestions...)
	return Snapshot{
		Owner:       s.owner,
		Messages:    cloneMessages(s.messages),
		State:       s.state,
		Typing:      s.typing,
		Suggestions: suggestions,
		Generation:  s.generation,
	}
}

// Subscribe returns a stream of session events and a func that ends it.
func (s *Session) Subscribe() (<-chan Event, func()) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// spawn runs fn in the background, tracked by Wait and by idleSince.
func (s *Session) spawn(fn func()) {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			s.pending--
			s.lastActive = s.now()
			s.mu.Unlock()
		}()
		fn()
	}()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.now()
	s.mu.Unlock()
}

// idleSince reports when the session last did anything. ok is false while
// a turn or background work is running or a subscriber is attached.
func (s *Session) idleSince() (at time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle || s.pending > 0 || len(s.subs) > 0 {
		return time.Time{}, false
	}
	return s.lastActive, true
}

// Wait blocks until in-flight replies and suggestion refreshes finish.
func (s *Session) Wait() {
	s.wg.Wait()
}

// refreshSuggestions applies the result only if gen is still current.
func (s *Session) refreshSuggestions(ctx context.Context, gen uint64, k suggest.Kind, turns []gateway.Turn) {
	s.spawn(func() {
		out := s.suggester.Suggest(ctx, turns, k)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.generation {
			s.logger.Debug("discarding stale suggestions", "generation", gen, "current", s.generation)
			return
		}
		s.suggestions = out
		s.emit(Event{Type: EventSuggestions, Suggestions: append([]string(nil), out...)})
	})
}

// persist writes the conversation unless a reveal is in progress. Storage
// errors are logged, never returned. The write ignores ctx cancellation.
func (s *Session) persist(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.state == StateTypingReveal {
		s.mu.Unlock()
		return
	}
	msgs := cloneMessages(s.messages)
	s.mu.Unlock()

	if err := s.store.SaveActive(ctx, s.owner, msgs); err != nil {
		s.logger.Error("failed to persist conversation", "messages", len(msgs), "error", err)
	}
}

func (s *Session) publishTurn(gen uint64, failed bool) {
	s.publish(SubjectTurnCompleted, map[string]any{
		"owner":      s.owner,
		"generation": gen,
		"failed":     failed,
		"timestamp":  s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Session) publish(subject string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func kindFor(msgs []Message) suggest.Kind {
	if len(msgs) > 1 {
		return suggest.Conversation
	}
	return suggest.Initial
}

// newArchiveID returns a time-ordered UUIDv7.
func newArchiveID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
