// Package sse implements the streaming wire format shared by the chat relay
// and its consumer: newline reframing of fragmented input, `data: <payload>`
// frame parsing, and the normalized delta-chunk codec.
package sse

import "strings"

// Done is the reserved payload signaling end-of-stream.
const Done = "[DONE]"

const dataMarker = "data:"

// Payload extracts the payload of a data frame line. isData is false for
// blank lines, comment lines (leading ':') and lines without the data
// marker; those are skipped by both sides of the stream.
func Payload(line string) (payload string, isData bool) {
	if strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, dataMarker) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, dataMarker)), true
}

// Chunk is the normalized stream unit emitted by the relay: one incremental
// piece of assistant text. The shape is the stable contract between relay
// and consumer and does not change when the upstream provider does.
type Chunk struct {
	Choices []Choice `json:"choices"`
}

// Choice wraps a single delta.
type Choice struct {
	Delta Delta `json:"delta"`
}

// Delta carries incremental assistant text.
type Delta struct {
	Content string `json:"content"`
}

// NewChunk builds a normalized chunk carrying one content delta.
func NewChunk(content string) Chunk {
	return Chunk{Choices: []Choice{{Delta: Delta{Content: content}}}}
}

// Content returns the delta text carried by the chunk, if any.
func (c Chunk) Content() string {
	if len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Delta.Content
}
