package meeting

// Emitter sends one JSON message to the client. Implementations must be
// safe for concurrent use; analysts emit from their own goroutines.
type Emitter interface {
	Emit(v any) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(v any) error

func (fn EmitterFunc) Emit(v any) error { return fn(v) }

// CheckpointFulfilled reports a completed checklist item (1-based).
type CheckpointFulfilled struct {
	CheckpointFulfilled int `json:"checkpoint_fulfilled"`
}

// Engagement reports who spoke the last segment and how long it was.
type Engagement struct {
	WordsCount int    `json:"words_count"`
	UserType   string `json:"user_type"`
}

const (
	UserTypeHost  = "host"
	UserTypeGuest = "guest"
)

// TopicStatus is the running off-topic judgment.
type TopicStatus struct {
	IsOfftopic         bool    `json:"is_offtopic"`
	TopicSummary       string  `json:"topic_summary"`
	RelevantAgendaItem *string `json:"relevant_agenda_item"`
	Recommendation     *string `json:"recommendation"`
}

type ConversationTip struct {
	NewConversationTip string `json:"new_conversation_tip"`
}

// NewCheckpoint proposes an extra checklist item.
type NewCheckpoint struct {
	NewCheckpointContent string `json:"new_checkpoint_content"`
}
