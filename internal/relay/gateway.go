package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/icsiak/studyshare/internal/relay/models"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// GatewayUpstream talks to an OpenAI-compatible chat completions endpoint.
// The system prompt is carried inline as the first message. The gateway
// already streams chunks in the normalized shape, so Delta is a thin decode.
type GatewayUpstream struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

// NewGatewayUpstream builds the gateway adapter. Returns nil when the API
// key is missing; the relay surfaces that as a configuration error at
// request time.
func NewGatewayUpstream(url, apiKey, model string, client *http.Client) *GatewayUpstream {
	if apiKey == "" {
		log.Warn().Msg("Gateway upstream not configured - API key missing")
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GatewayUpstream{
		url:    url,
		apiKey: apiKey,
		model:  model,
		client: client,
	}
}

func (g *GatewayUpstream) Name() string {
	return "gateway"
}

// Open issues the streaming chat completions call. A non-success status is
// returned as *UpstreamError so the relay can classify it; the body is
// never opened for streaming in that case.
func (g *GatewayUpstream) Open(ctx context.Context, messages []models.ChatMessage) (io.ReadCloser, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt,
	})
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: chatTemperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Status: resp.StatusCode, Message: string(detail)}
	}
	return resp.Body, nil
}

// Delta decodes one gateway stream chunk and extracts its content delta.
func (g *GatewayUpstream) Delta(payload []byte) (string, error) {
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", err
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}
