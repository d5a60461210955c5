// Package relay implements the streaming chat relay: it forwards a chat
// transcript to an upstream generative-language provider and re-frames the
// provider's incremental response into a stable, provider-agnostic event
// stream of `data: {"choices":[{"delta":{"content":...}}]}` frames.
package relay

import (
	"context"
	"fmt"
	"io"

	"github.com/icsiak/studyshare/internal/relay/models"
)

// Decoding temperature used for every upstream call.
const chatTemperature = 0.7

// Upstream is one streaming generative-language provider. Open issues the
// streaming call and returns the raw response body; Delta translates one
// provider data-frame payload into an incremental piece of assistant text.
// An empty delta means the frame carries no content and is skipped.
type Upstream interface {
	Name() string
	Open(ctx context.Context, messages []models.ChatMessage) (io.ReadCloser, error)
	Delta(payload []byte) (string, error)
}

// UpstreamError is a non-success response from the provider before any
// streaming began. The relay classifies it by status into the rate-limit,
// payment-required or generic error payload.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}
