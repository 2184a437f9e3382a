package subscribe

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/lumehq/chat-relay/internal/broker"
	"github.com/lumehq/chat-relay/internal/model/event"
	"github.com/lumehq/chat-relay/pkg/utils"
)

// Handler bridges relay channels to browser subscribers. Bridges are
// read-only taps: a missed event here never changes a request outcome.
type Handler struct {
	broker   broker.Broker
	upgrader websocket.Upgrader
}

// New creates the subscriber bridge handler.
func New(br broker.Broker) *Handler {
	return &Handler{
		broker: br,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the subscriber bridge routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/subscribe/{sessionID}", h.handleSSE)
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

// envelope frames one relay event for the browser.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, utils.ErrorResponse{Error: "streaming unsupported"})
		return
	}

	sub, cleanup, err := h.broker.NewSubscriber()
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to create subscriber")
		utils.RespondError(w, http.StatusServiceUnavailable, utils.ErrorResponse{Error: "subscription unavailable"})
		return
	}
	defer cleanup()

	ch, err := sub.Subscribe(r.Context(), event.Channel(sessionID))
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to subscribe to channel")
		utils.RespondError(w, http.StatusServiceUnavailable, utils.ErrorResponse{Error: "subscription unavailable"})
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEEvent(w, flusher, "connected", map[string]any{
		"sessionId": sessionID,
		"timestamp": time.Now().UTC(),
	})

	log.Info().Str("session_id", sessionID).Msg("sse subscriber attached")
	for msg := range ch {
		utils.SendSSERaw(w, flusher, msg.Metadata.Get(event.MetadataKey), msg.Payload)
		msg.Ack()
	}
	log.Info().Str("session_id", sessionID).Msg("sse subscriber detached")
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain client frames so the subscription ends when the peer closes.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	sub, cleanup, err := h.broker.NewSubscriber()
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to create subscriber")
		return
	}
	defer cleanup()

	ch, err := sub.Subscribe(ctx, event.Channel(sessionID))
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to subscribe to channel")
		return
	}

	log.Info().Str("session_id", sessionID).Msg("websocket subscriber attached")
	for msg := range ch {
		frame := envelope{
			Event: msg.Metadata.Get(event.MetadataKey),
			Data:  json.RawMessage(msg.Payload),
		}
		if err := conn.WriteJSON(frame); err != nil {
			msg.Nack()
			break
		}
		msg.Ack()
	}
	log.Info().Str("session_id", sessionID).Msg("websocket subscriber detached")
}
