package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumehq/chat-relay/internal/service/relay"
	"github.com/lumehq/chat-relay/pkg/utils"
)

// Handler exposes the message relay pipeline over HTTP.
type Handler struct {
	relay *relay.Service
	debug bool
}

// New creates the chat handler. debug controls whether raw error detail is
// included in error bodies.
func New(relaySvc *relay.Service, debug bool) *Handler {
	return &Handler{relay: relaySvc, debug: debug}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/send-message", h.handleSendMessage)
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload relay.SendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, utils.ErrorResponse{
			Error:     "Invalid request body",
			ErrorCode: relay.CodeValidation,
		})
		return
	}

	result, err := h.relay.SendMessage(r.Context(), payload)
	if err != nil {
		h.respondRelayError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respondRelayError(w http.ResponseWriter, err error) {
	var relayErr *relay.Error
	if !errors.As(err, &relayErr) {
		relayErr = &relay.Error{
			Code:    relay.CodeUnknown,
			Status:  http.StatusInternalServerError,
			Message: "Something went wrong while generating a response.",
		}
	}

	body := utils.ErrorResponse{
		Error:     relayErr.Message,
		ErrorCode: relayErr.Code,
	}
	if h.debug {
		body.Details = relayErr.Detail
	}
	utils.RespondError(w, relayErr.Status, body)
}
