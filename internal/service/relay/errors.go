package relay

import "net/http"

// Stable error codes surfaced in HTTP error bodies and broadcast error events.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeAuthFailed         = "AUTH_FAILED"
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeConnectionError    = "CONNECTION_ERROR"
	CodeProcessing         = "PROCESSING_ERROR"
	CodeUnknown            = "UNKNOWN_ERROR"
)

// Error is the single error currency between the orchestrator and the HTTP
// layer. Message is always safe to show a user; Detail carries raw error
// text and is only exposed in debug responses.
type Error struct {
	Code    string
	Status  int
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(message string) *Error {
	return &Error{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}
