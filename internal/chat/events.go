package chat

type EventType string

const (
	EventMessage     EventType = "message"
	EventTyping      EventType = "typing"
	EventFinalized   EventType = "finalized"
	EventSuggestions EventType = "suggestions"
	EventState       EventType = "state"
	EventReset       EventType = "reset"
)

// Event is pushed to subscribers as the session changes.
type Event struct {
	Type        EventType `json:"type"`
	Generation  uint64    `json:"generation"`
	State       State     `json:"state,omitempty"`
	Message     *Message  `json:"message,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
	Typing      string    `json:"typing,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

const subscriberBuffer = 256

// emit must be called with s.mu held. Slow subscribers miss events instead
// of blocking the session.
func (s *Session) emit(e Event) {
	e.Generation = s.generation
	s.lastActive = s.now()
	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// setState must be called with s.mu held.
func (s *Session) setState(st State) {
	s.state = st
	s.emit(Event{Type: EventState, State: st})
}
