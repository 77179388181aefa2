package chat

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/vidyasangam/assist/internal/gateway"
	"github.com/vidyasangam/assist/internal/suggest"
	"github.com/vidyasangam/assist/internal/typing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type completerFunc func(ctx context.Context, system string, turns []gateway.Turn) (string, error)

func (f completerFunc) Complete(ctx context.Context, system string, turns []gateway.Turn) (string, error) {
	return f(ctx, system, turns)
}

func replyWith(text string) completerFunc {
	return func(context.Context, string, []gateway.Turn) (string, error) { return text, nil }
}

type suggesterFunc func(ctx context.Context, history []gateway.Turn, k suggest.Kind) []string

func (f suggesterFunc) Suggest(ctx context.Context, history []gateway.Turn, k suggest.Kind) []string {
	return f(ctx, history, k)
}

// kindSuggester answers with a distinct, recognisable triple per kind.
var kindSuggester = suggesterFunc(func(_ context.Context, _ []gateway.Turn, k suggest.Kind) []string {
	return []string{string(k) + " one?", string(k) + " two?", string(k) + " three?"}
})

type fakeStore struct {
	mu       sync.Mutex
	active   map[string][]Message
	archive  map[string][]ArchivedSession
	tips     map[string]bool
	saves    [][]Message
	saveErr  error
	loadErr  error
	loadHook func(owner string) // runs before LoadActive takes the lock
	maxItems int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		active:   make(map[string][]Message),
		archive:  make(map[string][]ArchivedSession),
		tips:     make(map[string]bool),
		maxItems: 10,
	}
}

func (f *fakeStore) SaveActive(ctx context.Context, owner string, msgs []Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, cloneMessages(msgs))
	if f.saveErr != nil {
		return f.saveErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.active[owner] = cloneMessages(msgs)
	return nil
}

func (f *fakeStore) LoadActive(_ context.Context, owner string) ([]Message, error) {
	if f.loadHook != nil {
		f.loadHook(owner)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return cloneMessages(f.active[owner]), nil
}

func (f *fakeStore) AppendArchive(ctx context.Context, owner string, s ArchivedSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	list := append([]ArchivedSession{s}, f.archive[owner]...)
	if len(list) > f.maxItems {
		list = list[:f.maxItems]
	}
	f.archive[owner] = list
	return nil
}

func (f *fakeStore) LoadArchive(_ context.Context, owner string) ([]ArchivedSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ArchivedSession(nil), f.archive[owner]...), nil
}

func (f *fakeStore) TipsSeen(_ context.Context, owner string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tips[owner], nil
}

func (f *fakeStore) MarkTipsSeen(_ context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tips[owner] = true
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *fakePublisher) Publish(subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subjects...)
}

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

// fakeClock is a settable Now for eviction tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDeps(llm gateway.Completer, st *fakeStore) Deps {
	return Deps{
		Completer: llm,
		Suggester: kindSuggester,
		Presenter: typing.New(0),
		Store:     st,
		Logger:    discardLogger(),
		Now:       func() time.Time { return fixedNow },
	}
}

// loadedSession returns an idle session whose initial suggestions are in.
func loadedSession(deps Deps) *Session {
	s := NewHub(deps).Session(context.Background(), "owner-1")
	s.Wait()
	return s
}
