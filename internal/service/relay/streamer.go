package relay

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/lumehq/chat-relay/internal/model/chat"
)

// ChunkFunc receives each response increment: the delta produced by the
// model and the accumulated text so far. Chunks arrive in order; each
// accumulated value extends the previous one.
type ChunkFunc func(delta, accumulated string)

// Streamer produces the assistant response for a conversation, emitting
// incremental chunks along the way and returning the final text. On error no
// further chunks are emitted and the returned text is empty.
type Streamer interface {
	Stream(ctx context.Context, turns []chat.Turn, onChunk ChunkFunc) (string, error)
}

// OpenAIOptions configures the model-backed streamer.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// OpenAIStreamer streams completions from the OpenAI chat API.
type OpenAIStreamer struct {
	client      *openai.Client
	model       string
	temperature *float64
	maxTokens   *int
	timeout     time.Duration
}

// NewOpenAIStreamer builds the model-backed streamer from options resolved
// once at startup.
func NewOpenAIStreamer(opts OpenAIOptions) *OpenAIStreamer {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAIStreamer{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
	}
}

// Stream submits the full transcript and relays incremental deltas until the
// upstream stream is exhausted. Any upstream failure, including before the
// first delta, is returned as-is for classification.
func (s *OpenAIStreamer) Stream(ctx context.Context, turns []chat.Turn, onChunk ChunkFunc) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toOpenAIMessages(turns),
		Stream:   true,
	}
	if s.temperature != nil {
		req.Temperature = float32(*s.temperature)
	}
	if s.maxTokens != nil {
		req.MaxTokens = *s.maxTokens
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var content strings.Builder
	for {
		resp, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if len(resp.Choices) == 0 {
			continue
		}

		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		onChunk(delta, content.String())
	}

	return content.String(), nil
}

func toOpenAIMessages(turns []chat.Turn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		var role string
		switch turn.Role {
		case chat.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case chat.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		default:
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	return messages
}
