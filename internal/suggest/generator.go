package suggest

import (
	"context"
	"log/slog"

	"github.com/vidyasangam/assist/internal/gateway"
)

// Generator asks the completion backend for follow-up questions.
type Generator struct {
	llm    gateway.Completer
	system string
	logger *slog.Logger
}

func New(llm gateway.Completer, system string, logger *slog.Logger) *Generator {
	return &Generator{llm: llm, system: system, logger: logger}
}

// Suggest always returns exactly Count questions. Gateway failures degrade
// to the fallback set for k.
func (g *Generator) Suggest(ctx context.Context, history []gateway.Turn, k Kind) []string {
	prompt := metaPrompt
	if k == Initial {
		prompt = initialMetaPrompt
	}

	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	turns := make([]gateway.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, gateway.Turn{Role: gateway.RoleUser, Content: prompt})

	raw, err := g.llm.Complete(ctx, g.system, turns)
	if err != nil {
		g.logger.Warn("suggestion request failed, using fallback", "kind", string(k), "error", err)
		return Fallback(k)
	}

	out := Extract(raw, k)
	g.logger.Debug("suggestions generated", "kind", string(k), "raw_len", len(raw))
	return out
}
