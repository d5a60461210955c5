package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icsiak/studyshare/internal/relay/models"
)

const testOrigin = "https://studyshare.example"

func gatewayFor(t *testing.T, upstream http.HandlerFunc) (*GatewayUpstream, func()) {
	t.Helper()
	server := httptest.NewServer(upstream)
	g := NewGatewayUpstream(server.URL, "test-key", "test-model", server.Client())
	return g, server.Close
}

func postChat(handler *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func chatBody(t *testing.T, messages ...models.ChatMessage) string {
	t.Helper()
	raw, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestChatRelayTranslationRoundTrip(t *testing.T) {
	upstream, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hai\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	defer done()

	handler := NewHandler(upstream, testOrigin)
	rec := postChat(handler, chatBody(t, models.ChatMessage{Role: models.RoleUser, Content: "Halo"}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hai\"}}]}\n\ndata: [DONE]\n\n",
		rec.Body.String())
}

func TestChatRelayIgnoresNonDataLines(t *testing.T) {
	upstream, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, ": keep-alive\n")
		fmt.Fprint(w, "event: message\n")
		fmt.Fprint(w, "\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
	})
	defer done()

	handler := NewHandler(upstream, testOrigin)
	rec := postChat(handler, chatBody(t, models.ChatMessage{Role: models.RoleUser, Content: "Halo"}))

	assert.Equal(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n"+
			"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n"+
			"data: [DONE]\n\n",
		rec.Body.String())
}

func TestChatRelaySplitFrameRecovered(t *testing.T) {
	// The upstream frame is split mid-JSON across two flushed writes; the
	// line buffer must reassemble it into exactly one delta.
	upstream, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"del")
		flusher.Flush()
		fmt.Fprint(w, "ta\":{\"content\":\"x\"}}]}\n\n")
		flusher.Flush()
	})
	defer done()

	handler := NewHandler(upstream, testOrigin)
	rec := postChat(handler, chatBody(t, models.ChatMessage{Role: models.RoleUser, Content: "Halo"}))

	assert.Equal(t,
		"data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n\ndata: [DONE]\n\n",
		rec.Body.String())
}

func TestChatRelayUpstreamRejection(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "rate limited",
			upstreamStatus: http.StatusTooManyRequests,
			expectedStatus: http.StatusTooManyRequests,
			expectedError:  "Rate limit exceeded, please try again later.",
		},
		{
			name:           "payment required",
			upstreamStatus: http.StatusPaymentRequired,
			expectedStatus: http.StatusPaymentRequired,
			expectedError:  "Payment required, please add funds to your workspace.",
		},
		{
			name:           "generic upstream failure",
			upstreamStatus: http.StatusBadGateway,
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Upstream provider error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream says no", tt.upstreamStatus)
			})
			defer done()

			handler := NewHandler(upstream, testOrigin)
			rec := postChat(handler, chatBody(t, models.ChatMessage{Role: models.RoleUser, Content: "Halo"}))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp struct {
				Error string `json:"error"`
			}
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}

func TestChatRelayPreflight(t *testing.T) {
	handler := NewHandler(nil, testOrigin)

	req := httptest.NewRequest(http.MethodOptions, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestChatRelayRequestValidation(t *testing.T) {
	handler := NewHandler(nil, testOrigin)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed JSON", body: "{not json"},
		{name: "empty messages", body: `{"messages":[]}`},
		{name: "missing messages", body: `{}`},
		{name: "invalid role", body: `{"messages":[{"role":"robot","content":"hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatRelayMissingCredential(t *testing.T) {
	// NewGatewayUpstream returns nil without a key; the relay surfaces the
	// missing credential as a configuration error before contacting anyone.
	handler := NewHandler(nil, testOrigin)
	rec := postChat(handler, chatBody(t, models.ChatMessage{Role: models.RoleUser, Content: "Halo"}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestGatewayRequestShape(t *testing.T) {
	var captured []byte
	var auth string
	upstream, done := gatewayFor(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		captured = buf.Bytes()
		fmt.Fprint(w, "data: [DONE]\n\n")
	})
	defer done()

	handler := NewHandler(upstream, testOrigin)
	postChat(handler, chatBody(t,
		models.ChatMessage{Role: models.RoleUser, Content: "Halo"},
		models.ChatMessage{Role: models.RoleAssistant, Content: "Hai"},
	))

	assert.Equal(t, "Bearer test-key", auth)

	var req struct {
		Model       string `json:"model"`
		Temperature float32
		Stream      bool `json:"stream"`
		Messages    []models.ChatMessage
	}
	assert.NoError(t, json.Unmarshal(captured, &req))
	assert.Equal(t, "test-model", req.Model)
	assert.True(t, req.Stream)
	// System prompt inline, then the transcript in order.
	assert.Equal(t, models.RoleSystem, req.Messages[0].Role)
	assert.Equal(t, []models.ChatMessage{
		{Role: models.RoleUser, Content: "Halo"},
		{Role: models.RoleAssistant, Content: "Hai"},
	}, req.Messages[1:])
}
