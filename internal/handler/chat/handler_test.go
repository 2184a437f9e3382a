package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/lumehq/chat-relay/internal/broker"
	"github.com/lumehq/chat-relay/internal/service/relay"
	"github.com/lumehq/chat-relay/internal/service/session"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	br := broker.NewInMemory()
	t.Cleanup(func() { _ = br.Close() })

	relaySvc := relay.New(
		session.NewStore(),
		relay.NewMockStreamerWithDelay(0),
		relay.NewPublisher(br.Publisher()),
		false,
	)
	handler := New(relaySvc, false)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(r *chi.Mux, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/send-message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSendMessageSuccess(t *testing.T) {
	r := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"message": "hello", "sessionId": "s1"})

	resp := postJSON(r, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}

	var result relay.SendResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success=true")
	}
	if result.MessageID == "" {
		t.Fatal("expected a messageId")
	}
	if result.Message == "" {
		t.Fatal("expected a message")
	}
}

func TestSendMessageEmptyMessage(t *testing.T) {
	r := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"message": "", "sessionId": "s1"})

	resp := postJSON(r, payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body struct {
		Error     string `json:"error"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.Error != "Message cannot be empty" {
		t.Fatalf("unexpected error %q", body.Error)
	}
	if body.ErrorCode != relay.CodeValidation {
		t.Fatalf("unexpected errorCode %q", body.ErrorCode)
	}
}

func TestSendMessageMissingSessionID(t *testing.T) {
	r := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"message": "hello"})

	resp := postJSON(r, payload)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessageInvalidJSON(t *testing.T) {
	r := setupRouter(t)

	resp := postJSON(r, []byte(`{not json`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body struct {
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.ErrorCode != relay.CodeValidation {
		t.Fatalf("unexpected errorCode %q", body.ErrorCode)
	}
}
