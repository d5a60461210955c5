// Package chatclient implements the consuming side of the chat relay
// stream: it issues the chat request, reads the normalized event stream
// incrementally and grows the in-progress assistant message in place.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/icsiak/studyshare/internal/relay/models"
	"github.com/icsiak/studyshare/pkg/sse"
)

const (
	greeting        = "Haii! Aku Gugugaga 🧠 temen belajarmu! Mau bahas pelajaran, motivasi, atau curhat tugas dulu nih?"
	errorFallback   = "Maaf, aku lagi error nih 😅 Coba lagi ya!"
	timeoutFallback = "Maaf, aku kelamaan mikir nih 😅 Coba kirim lagi ya!"

	defaultTimeout = 2 * time.Minute
)

// ErrBusy is returned when SendMessage is called while a previous send is
// still streaming. At most one stream is active per Consumer.
var ErrBusy = errors.New("chatclient: a send is already in progress")

// StreamState is the UI-visible chat state: the transcript so far and a
// busy flag held true from send until the stream terminates.
type StreamState struct {
	Transcript []models.ChatMessage
	Busy       bool
}

// Consumer accumulates the chat transcript and reflects each streamed
// delta into it. The assistant message grows monotonically: every update
// extends the previous content, never rolls it back.
type Consumer struct {
	endpoint string
	token    string
	client   *http.Client
	timeout  time.Duration
	onChange func(StreamState)

	mu         sync.Mutex
	transcript []models.ChatMessage
	busy       bool
}

// Option configures a Consumer.
type Option func(*Consumer)

// WithHTTPClient overrides the HTTP client used for chat requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Consumer) { c.client = client }
}

// WithTimeout sets the per-send deadline. A stalled stream is aborted when
// it expires, clearing the busy flag.
func WithTimeout(d time.Duration) Option {
	return func(c *Consumer) { c.timeout = d }
}

// WithOnChange installs a hook invoked with a state snapshot after every
// transcript or busy-flag mutation.
func WithOnChange(fn func(StreamState)) Option {
	return func(c *Consumer) { c.onChange = fn }
}

// NewConsumer creates a consumer seeded with the assistant greeting.
func NewConsumer(endpoint, token string, opts ...Option) *Consumer {
	c := &Consumer{
		endpoint: endpoint,
		token:    token,
		client:   http.DefaultClient,
		timeout:  defaultTimeout,
		transcript: []models.ChatMessage{
			{Role: models.RoleAssistant, Content: greeting},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current stream state.
func (c *Consumer) State() StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Consumer) snapshotLocked() StreamState {
	return StreamState{
		Transcript: append([]models.ChatMessage(nil), c.transcript...),
		Busy:       c.busy,
	}
}

func (c *Consumer) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}

// SendMessage appends the user message, issues the chat request and streams
// the assistant reply into the transcript. It blocks until the stream
// terminates; stream failures surface in the transcript rather than as a
// returned error. A second call while busy returns ErrBusy.
func (c *Consumer) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("chatclient: message text is empty")
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.transcript = append(c.transcript, models.ChatMessage{Role: models.RoleUser, Content: text})
	outbound := append([]models.ChatMessage(nil), c.transcript...)
	c.notifyLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, outbound)
	if err != nil {
		log.Warn().Err(err).Msg("Chat request failed")
		if ctx.Err() == context.DeadlineExceeded {
			c.fail(timeoutFallback)
		} else {
			c.fail(errorFallback)
		}
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		log.Warn().Int("status", resp.StatusCode).Msg("Chat request rejected")
		c.fail(errorFallback)
		return nil
	}
	defer resp.Body.Close()

	// The placeholder slot that will be grown incrementally.
	c.mu.Lock()
	c.transcript = append(c.transcript, models.ChatMessage{Role: models.RoleAssistant})
	c.notifyLocked()
	c.mu.Unlock()

	streamed, readFailed := c.readStream(resp.Body)

	if ctx.Err() == context.DeadlineExceeded {
		if streamed == 0 {
			// Nothing arrived before the deadline; reuse the empty slot for
			// the timeout message. Partial content is never overwritten.
			c.replaceLast(timeoutFallback)
		}
	} else if readFailed {
		// The transport broke mid-stream. Whatever already streamed stays;
		// the apology goes after it as its own message.
		c.fail(errorFallback)
		return nil
	}
	c.setIdle()
	return nil
}

func (c *Consumer) post(ctx context.Context, messages []models.ChatMessage) (*http.Response, error) {
	body, err := json.Marshal(models.ChatRequest{Messages: messages})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.client.Do(req)
}

// readStream consumes the normalized event stream until the [DONE]
// sentinel, end of stream or a read error. It returns the number of bytes
// accumulated into the assistant message and whether the transport raised
// a read error. A stream that ends without the sentinel is treated as a
// clean end; a read error leaves whatever content already streamed in
// place.
func (c *Consumer) readStream(body io.Reader) (streamed int, readFailed bool) {
	var buf sse.LineBuffer
	var assistant strings.Builder
	frag := make([]byte, 4096)

	for {
		n, readErr := body.Read(frag)
		if n > 0 {
			buf.Append(frag[:n])
			if done := c.drain(&buf, &assistant); done {
				break
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Warn().Err(readErr).Msg("Chat stream ended with read error")
				readFailed = true
			}
			break
		}
	}
	return assistant.Len(), readFailed
}

// drain processes every complete line buffered so far, returning true once
// the terminator sentinel is seen. A payload that is not valid JSON yet is
// pushed back for completion by the next fragment.
func (c *Consumer) drain(buf *sse.LineBuffer, assistant *strings.Builder) bool {
	for {
		line, ok := buf.Next()
		if !ok {
			return false
		}

		payload, isData := sse.Payload(line)
		if !isData || payload == "" {
			continue
		}
		if payload == sse.Done {
			return true
		}

		var chunk sse.Chunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			buf.Requeue(line)
			return false
		}
		if content := chunk.Content(); content != "" {
			assistant.WriteString(content)
			c.replaceLast(assistant.String())
		}
	}
}

// replaceLast overwrites the content of the last transcript message in
// place, preserving its role.
func (c *Consumer) replaceLast(content string) {
	c.mu.Lock()
	c.transcript[len(c.transcript)-1].Content = content
	c.notifyLocked()
	c.mu.Unlock()
}

// fail appends the fallback assistant message and clears the busy flag.
// Streamed content already in the transcript is never touched; the
// fallback always arrives as its own message.
func (c *Consumer) fail(message string) {
	c.mu.Lock()
	c.transcript = append(c.transcript, models.ChatMessage{Role: models.RoleAssistant, Content: message})
	c.busy = false
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Consumer) setIdle() {
	c.mu.Lock()
	c.busy = false
	c.notifyLocked()
	c.mu.Unlock()
}
