package chat

import (
	"context"

	"github.com/vidyasangam/assist/internal/gateway"
	"github.com/vidyasangam/assist/internal/suggest"
)

// ConversationStore persists the active conversation, the archive and the
// onboarding flag for an owner. LoadActive returns nil when nothing is stored.
type ConversationStore interface {
	SaveActive(ctx context.Context, owner string, msgs []Message) error
	LoadActive(ctx context.Context, owner string) ([]Message, error)
	AppendArchive(ctx context.Context, owner string, s ArchivedSession) error
	LoadArchive(ctx context.Context, owner string) ([]ArchivedSession, error)
	TipsSeen(ctx context.Context, owner string) (bool, error)
	MarkTipsSeen(ctx context.Context, owner string) error
}

// Suggester produces exactly suggest.Count follow-up questions.
type Suggester interface {
	Suggest(ctx context.Context, history []gateway.Turn, k suggest.Kind) []string
}

// Publisher announces session events on the bus.
type Publisher interface {
	Publish(subject string, data any) error
}

const (
	SubjectTurnCompleted   = "vidyasangam.assist.turn.completed"
	SubjectSessionArchived = "vidyasangam.assist.session.archived"
)
