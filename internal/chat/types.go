package chat

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/vidyasangam/assist/internal/gateway"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the conversation log.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ArchivedSession is an immutable snapshot taken by StartNewChat.
type ArchivedSession struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
}

// State is the per-turn state of a session.
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingCompletion State = "awaiting_completion"
	StateTypingReveal       State = "typing_reveal"
)

const titleLimit = 30

// archiveTitle is the first user message cut to titleLimit characters, or a
// date-based default.
func archiveTitle(msgs []Message, at time.Time) string {
	for _, m := range msgs {
		if m.Role != RoleUser || m.Content == "" {
			continue
		}
		if utf8.RuneCountInString(m.Content) > titleLimit {
			return string([]rune(m.Content)[:titleLimit]) + "..."
		}
		return m.Content
	}
	return fmt.Sprintf("Chat from %s", at.Format("Jan 2, 2006"))
}

func cloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	return append([]Message(nil), msgs...)
}

func toTurns(msgs []Message) []gateway.Turn {
	turns := make([]gateway.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, gateway.Turn{Role: string(m.Role), Content: m.Content})
	}
	return turns
}
