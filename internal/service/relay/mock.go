package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumehq/chat-relay/internal/model/chat"
)

// mockChunkDelay paces word emission to approximate real token streaming.
const mockChunkDelay = 150 * time.Millisecond

// MockStreamer is the deterministic development strategy: a canned reply
// picked by keyword, streamed one word at a time. It never fails.
type MockStreamer struct {
	delay time.Duration
}

// NewMockStreamer returns the mock strategy with its standard pacing.
func NewMockStreamer() *MockStreamer {
	return &MockStreamer{delay: mockChunkDelay}
}

// NewMockStreamerWithDelay overrides the pacing, mainly for tests.
func NewMockStreamerWithDelay(delay time.Duration) *MockStreamer {
	return &MockStreamer{delay: delay}
}

// Stream emits the canned reply word by word, each chunk prefixed with a
// space except the first, and returns the full reply.
func (m *MockStreamer) Stream(_ context.Context, turns []chat.Turn, onChunk ChunkFunc) (string, error) {
	reply := mockReply(lastUserMessage(turns))

	var content strings.Builder
	for i, word := range strings.Fields(reply) {
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if m.delay > 0 {
			time.Sleep(m.delay)
		}
		content.WriteString(chunk)
		onChunk(chunk, content.String())
	}

	return content.String(), nil
}

func mockReply(message string) string {
	lowered := strings.ToLower(strings.TrimSpace(message))
	switch {
	// "hi" must match as a word, not inside "this" or "chip".
	case strings.Contains(lowered, "hello"), containsWord(lowered, "hi"):
		return "Hello! This is a mock response from the AI assistant. How can I help you today?"
	case strings.Contains(lowered, "test"):
		return "Test received! The mock response pipeline is wired up and working."
	case strings.Contains(lowered, "how are you"):
		return "I'm doing great, thanks for asking! As a mock assistant I'm always up and running."
	default:
		return fmt.Sprintf("You said: \"%s\". This is a mock reply generated without calling the real model.", strings.TrimSpace(message))
	}
}

func containsWord(lowered, word string) bool {
	for _, field := range strings.Fields(lowered) {
		if strings.Trim(field, ".,!?;:'\"") == word {
			return true
		}
	}
	return false
}

func lastUserMessage(turns []chat.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == chat.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}
