package relay

import (
	"errors"
	"net"
	"net/url"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "quota exhausted 429",
			err:        &openai.APIError{HTTPStatusCode: 429, Code: "insufficient_quota", Message: "You exceeded your current quota"},
			wantCode:   CodeQuotaExceeded,
			wantStatus: 429,
		},
		{
			name:       "plain rate limit 429",
			err:        &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"},
			wantCode:   CodeRateLimited,
			wantStatus: 429,
		},
		{
			name:       "auth failure reported as server error",
			err:        &openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key provided"},
			wantCode:   CodeAuthFailed,
			wantStatus: 500,
		},
		{
			name:       "bad request",
			err:        &openai.APIError{HTTPStatusCode: 400, Message: "Invalid model"},
			wantCode:   CodeInvalidRequest,
			wantStatus: 400,
		},
		{
			name:       "upstream 500",
			err:        &openai.APIError{HTTPStatusCode: 500, Message: "The server had an error"},
			wantCode:   CodeServiceUnavailable,
			wantStatus: 503,
		},
		{
			name:       "upstream 503 via request error",
			err:        &openai.RequestError{HTTPStatusCode: 503, Err: errors.New("service unavailable")},
			wantCode:   CodeServiceUnavailable,
			wantStatus: 503,
		},
		{
			name:       "dns failure",
			err:        &net.DNSError{Err: "no such host", Name: "api.openai.com"},
			wantCode:   CodeConnectionError,
			wantStatus: 503,
		},
		{
			name:       "connection refused",
			err:        &net.OpError{Op: "dial", Err: errors.New("connection refused")},
			wantCode:   CodeConnectionError,
			wantStatus: 503,
		},
		{
			name:       "wrapped transport error",
			err:        &url.Error{Op: "Post", URL: "https://api.openai.com/v1/chat/completions", Err: errors.New("EOF")},
			wantCode:   CodeConnectionError,
			wantStatus: 503,
		},
		{
			name:       "unrecognized error",
			err:        errors.New("something odd happened"),
			wantCode:   CodeUnknown,
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.wantCode {
				t.Fatalf("code: got %s, want %s", got.Code, tt.wantCode)
			}
			if got.Status != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Message == "" {
				t.Fatal("expected a user-facing message")
			}
			if got.Detail == "" {
				t.Fatal("expected raw detail to be preserved")
			}
		})
	}
}

func TestClassifyNeverLeaksRawErrorIntoMessage(t *testing.T) {
	raw := "sk-secret-key was rejected"
	got := Classify(&openai.APIError{HTTPStatusCode: 401, Message: raw})
	if got.Message == raw {
		t.Fatal("raw error must not be used as the user-facing message")
	}
	if got.Detail == "" {
		t.Fatal("raw error should be kept in Detail for debugging")
	}
}

func TestClassifyQuotaByMessageText(t *testing.T) {
	got := Classify(&openai.APIError{HTTPStatusCode: 429, Message: "You have run out of quota"})
	if got.Code != CodeQuotaExceeded {
		t.Fatalf("expected quota classification, got %s", got.Code)
	}
}
