package relay

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lumehq/chat-relay/internal/model/event"
)

// Publisher delivers typed events to a session's broadcast channel.
// Delivery is best-effort: every failure is logged and swallowed, and the
// orchestration outcome is never affected by a publish failure.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher wraps a broker publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// Publish marshals payload and sends it to the chat-<sessionID> topic with
// the event name in message metadata.
func (p *Publisher) Publish(sessionID, name string, payload any) {
	if p == nil || p.pub == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Str("event", name).Msg("failed to marshal event payload")
		return
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(event.MetadataKey, name)

	if err := p.pub.Publish(event.Channel(sessionID), msg); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Str("event", name).Msg("event publish failed")
	}
}
