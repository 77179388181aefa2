package suggest

// Kind selects which fallback pool pads or replaces a suggestion set.
type Kind string

const (
	// Initial is used for a fresh or just-reset conversation.
	Initial Kind = "initial"
	// Conversation is used after a normal assistant reply.
	Conversation Kind = "conversation"
	// Error is used after the reply itself failed.
	Error Kind = "error"
)

// Count is the size of every suggestion set.
const Count = 3

var fallbacks = map[Kind][Count]string{
	Initial: {
		"What is VidyaSangam?",
		"How does mentor matching work?",
		"How do I find a mentor?",
	},
	Conversation: {
		"Can you tell me more about that?",
		"How do I get started with my mentor?",
		"What makes a good mentee?",
	},
	Error: {
		"What is VidyaSangam?",
		"How do mentorship sessions work?",
		"How can I contact support?",
	},
}

// Fallback returns a copy of the fixed triple for k. Unknown kinds get the
// Conversation set.
func Fallback(k Kind) []string {
	set, ok := fallbacks[k]
	if !ok {
		set = fallbacks[Conversation]
	}
	return append([]string(nil), set[:]...)
}
