package event

import "time"

// Event names carried in message metadata and mirrored to subscribers.
const (
	UserMessage       = "user-message"
	AssistantChunk    = "assistant-message-chunk"
	AssistantComplete = "assistant-message-complete"
	ServiceError      = "service-error"
	Error             = "error"
)

// MetadataKey is the broker message metadata key holding the event name.
const MetadataKey = "event"

// Channel returns the broadcast topic for a session.
func Channel(sessionID string) string {
	return "chat-" + sessionID
}

// UserMessagePayload mirrors an accepted user message to subscribers.
type UserMessagePayload struct {
	Message   string    `json:"message"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
}

// AssistantChunkPayload carries one increment of an in-progress response.
// Content is cumulative; Chunk is the delta that produced it.
type AssistantChunkPayload struct {
	MessageID  string    `json:"messageId"`
	Content    string    `json:"content"`
	Chunk      string    `json:"chunk"`
	Timestamp  time.Time `json:"timestamp"`
	IsComplete bool      `json:"isComplete"`
	Type       string    `json:"type"`
}

// AssistantCompletePayload closes out an assistant response.
type AssistantCompletePayload struct {
	MessageID  string    `json:"messageId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsComplete bool      `json:"isComplete"`
	Type       string    `json:"type"`
}

// ErrorPayload notifies subscribers of a failed request. Best-effort only;
// the HTTP response remains the authoritative failure signal.
type ErrorPayload struct {
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	ErrorCode string    `json:"errorCode,omitempty"`
	Details   string    `json:"details,omitempty"`
}
