package relay

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lumehq/chat-relay/internal/model/chat"
	"github.com/lumehq/chat-relay/internal/model/event"
	"github.com/lumehq/chat-relay/internal/service/session"
)

// Service orchestrates the message relay pipeline: validate the request,
// record the user turn, stream the assistant response as chunk events, then
// record the assistant turn and publish completion.
type Service struct {
	sessions *session.Store
	streamer Streamer
	events   *Publisher
	debug    bool
}

// New wires the orchestrator. The streamer strategy (real or mock) is fixed
// at construction, never per request.
func New(sessions *session.Store, streamer Streamer, events *Publisher, debug bool) *Service {
	return &Service{
		sessions: sessions,
		streamer: streamer,
		events:   events,
		debug:    debug,
	}
}

// SendResult is the success body of POST /api/chat/send-message.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

// SendMessage runs one request through the pipeline. On failure it returns a
// *relay.Error carrying the HTTP status and stable code; the user turn stays
// recorded once appended, but no assistant turn is appended on failure.
func (s *Service) SendMessage(ctx context.Context, payload SendPayload) (*SendResult, error) {
	req, verr := Validate(payload)
	if verr != nil {
		return nil, verr
	}

	conv := s.sessions.GetOrCreate(req.SessionID)
	conv.LockSend()
	defer conv.UnlockSend()

	conv.Append(chat.NewTurn(chat.RoleUser, req.Message))
	s.events.Publish(req.SessionID, event.UserMessage, event.UserMessagePayload{
		Message:   req.Message,
		UserID:    req.UserID,
		Timestamp: time.Now().UTC(),
		Type:      "user",
	})

	messageID := uuid.NewString()
	final, err := s.streamer.Stream(ctx, conv.Turns(), func(delta, accumulated string) {
		s.events.Publish(req.SessionID, event.AssistantChunk, event.AssistantChunkPayload{
			MessageID:  messageID,
			Content:    accumulated,
			Chunk:      delta,
			Timestamp:  time.Now().UTC(),
			IsComplete: false,
			Type:       "assistant",
		})
	})
	if err != nil {
		classified := Classify(err)
		log.Error().Err(err).
			Str("session_id", req.SessionID).
			Str("code", classified.Code).
			Msg("response stream failed")
		s.publishError(req.SessionID, event.ServiceError, classified)
		s.publishError(req.SessionID, event.Error, classified)
		return nil, classified
	}

	if strings.TrimSpace(final) == "" {
		processErr := &Error{
			Code:    CodeProcessing,
			Status:  http.StatusInternalServerError,
			Message: "No response generated",
		}
		log.Error().Str("session_id", req.SessionID).Msg("streamer returned empty response")
		s.publishError(req.SessionID, event.Error, processErr)
		return nil, processErr
	}

	conv.Append(chat.NewTurn(chat.RoleAssistant, final))
	s.events.Publish(req.SessionID, event.AssistantComplete, event.AssistantCompletePayload{
		MessageID:  messageID,
		Content:    final,
		Timestamp:  time.Now().UTC(),
		IsComplete: true,
		Type:       "assistant",
	})

	log.Info().
		Str("session_id", req.SessionID).
		Str("message_id", messageID).
		Int("length", len(final)).
		Msg("relay completed")

	return &SendResult{
		Success:   true,
		MessageID: messageID,
		Message:   final,
	}, nil
}

func (s *Service) publishError(sessionID, name string, relayErr *Error) {
	payload := event.ErrorPayload{
		Error:     relayErr.Message,
		Timestamp: time.Now().UTC(),
		ErrorCode: relayErr.Code,
	}
	if s.debug {
		payload.Details = relayErr.Detail
	}
	s.events.Publish(sessionID, name, payload)
}
