package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/icsiak/studyshare/internal/relay/models"
	"github.com/rs/zerolog/log"
)

// GeminiUpstream talks to the Google generative-language API directly,
// translating the transcript into the Gemini request shape and Gemini
// stream chunks back into content deltas. The `alt=sse` parameter forces
// the API into server-sent-event framing.
type GeminiUpstream struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature float32 `json:"temperature"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiChunk struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGeminiUpstream builds the Gemini adapter. Returns nil when the API key
// is missing.
func NewGeminiUpstream(baseURL, apiKey, model string, client *http.Client) *GeminiUpstream {
	if apiKey == "" {
		log.Warn().Msg("Gemini upstream not configured - API key missing")
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiUpstream{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  client,
	}
}

func (g *GeminiUpstream) Name() string {
	return "gemini"
}

// transformContents converts the transcript to Gemini contents. System
// messages are dropped here and carried through the systemInstruction slot
// instead; user/assistant order is preserved, with assistant mapped to the
// "model" role.
func transformContents(messages []models.ChatMessage) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}

func (g *GeminiUpstream) Open(ctx context.Context, messages []models.ChatMessage) (io.ReadCloser, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: transformContents(messages),
		SystemInstruction: &geminiContent{
			Role:  "model",
			Parts: []geminiPart{{Text: SystemPrompt}},
		},
		GenerationConfig: geminiGenerationConfig{Temperature: chatTemperature},
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?key=%s&alt=sse",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
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

// Delta decodes one Gemini stream chunk and extracts the incremental text.
func (g *GeminiUpstream) Delta(payload []byte) (string, error) {
	var chunk geminiChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return "", err
	}
	if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return chunk.Candidates[0].Content.Parts[0].Text, nil
}
