package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Writer emits normalized `data: <json>` frames to a streaming response,
// flushing after every frame so deltas reach the client as they are
// produced rather than when the response buffer fills.
type Writer struct {
	w io.Writer
	f http.Flusher
}

// NewWriter wraps w. If w implements http.Flusher each frame is flushed
// immediately.
func NewWriter(w io.Writer) *Writer {
	sw := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		sw.f = f
	}
	return sw
}

// WriteContent emits one content delta as a normalized frame.
func (sw *Writer) WriteContent(text string) error {
	payload, err := json.Marshal(NewChunk(text))
	if err != nil {
		return err
	}
	return sw.writeFrame(string(payload))
}

// WriteDone emits the end-of-stream sentinel frame.
func (sw *Writer) WriteDone() error {
	return sw.writeFrame(Done)
}

func (sw *Writer) writeFrame(payload string) error {
	if _, err := fmt.Fprintf(sw.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if sw.f != nil {
		sw.f.Flush()
	}
	return nil
}
