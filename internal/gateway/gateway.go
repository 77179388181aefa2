// Package gateway talks to the remote completion endpoint that answers the
// assistant widget.
package gateway

import "context"

// Role tags carried by a Turn.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of a conversation as seen by a completion backend.
// Timestamps and other display metadata are deliberately absent.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer returns a single free-form reply for a system instruction and
// the conversation so far. Implementations make exactly one attempt.
type Completer interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
}
