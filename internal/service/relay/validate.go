package relay

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength bounds the trimmed user message.
const MaxMessageLength = 4000

// DefaultUserID is assumed when the client does not identify itself.
const DefaultUserID = "anonymous"

// SendPayload is the decoded request body of POST /api/chat/send-message.
type SendPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// SendRequest is a validated, normalized send request.
type SendRequest struct {
	Message   string
	SessionID string
	UserID    string
}

// Validate checks the payload rule by rule and normalizes it. It is free of
// side effects; the first violated rule determines the returned error.
func Validate(payload SendPayload) (SendRequest, *Error) {
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		return SendRequest{}, validationError("Message cannot be empty")
	}

	if strings.TrimSpace(payload.SessionID) == "" {
		return SendRequest{}, validationError("Session ID is required")
	}

	if utf8.RuneCountInString(message) > MaxMessageLength {
		return SendRequest{}, validationError("Message is too long (maximum 4000 characters)")
	}

	userID := strings.TrimSpace(payload.UserID)
	if userID == "" {
		userID = DefaultUserID
	}

	return SendRequest{
		Message:   message,
		SessionID: strings.TrimSpace(payload.SessionID),
		UserID:    userID,
	}, nil
}
