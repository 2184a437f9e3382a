package relay

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Classify maps an upstream model failure to a stable user-facing error.
// Precedence: quota-exhausted 429, plain 429, 401, 400, >=500, network-level
// connection failure, then unknown. Raw error text only ever lands in Detail.
func Classify(err error) *Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, quotaExhausted(apiErr), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, false, err)
	}

	if isConnectionError(err) {
		return &Error{
			Code:    CodeConnectionError,
			Status:  http.StatusServiceUnavailable,
			Message: "Could not reach the AI service. Please try again later.",
			Detail:  err.Error(),
		}
	}

	return unknownError(err)
}

func classifyStatus(status int, quota bool, err error) *Error {
	switch {
	case status == http.StatusTooManyRequests && quota:
		return &Error{
			Code:    CodeQuotaExceeded,
			Status:  http.StatusTooManyRequests,
			Message: "The AI service quota has been exhausted. Please try again later.",
			Detail:  err.Error(),
		}
	case status == http.StatusTooManyRequests:
		return &Error{
			Code:    CodeRateLimited,
			Status:  http.StatusTooManyRequests,
			Message: "Too many requests to the AI service. Please wait a moment and try again.",
			Detail:  err.Error(),
		}
	case status == http.StatusUnauthorized:
		// Reported as a server error on purpose; credential problems are
		// an operator concern, not a caller concern.
		return &Error{
			Code:    CodeAuthFailed,
			Status:  http.StatusInternalServerError,
			Message: "The AI service is misconfigured. Please contact the site operator.",
			Detail:  err.Error(),
		}
	case status == http.StatusBadRequest:
		return &Error{
			Code:    CodeInvalidRequest,
			Status:  http.StatusBadRequest,
			Message: "The AI service rejected the request.",
			Detail:  err.Error(),
		}
	case status >= http.StatusInternalServerError:
		return &Error{
			Code:    CodeServiceUnavailable,
			Status:  http.StatusServiceUnavailable,
			Message: "The AI service is temporarily unavailable. Please try again later.",
			Detail:  err.Error(),
		}
	}
	return unknownError(err)
}

func unknownError(err error) *Error {
	return &Error{
		Code:    CodeUnknown,
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong while generating a response.",
		Detail:  err.Error(),
	}
}

func quotaExhausted(apiErr *openai.APIError) bool {
	if apiErr.Type == "insufficient_quota" {
		return true
	}
	if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "quota")
}

func isConnectionError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
