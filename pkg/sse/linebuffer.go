package sse

import "bytes"

// LineBuffer reassembles complete lines from arbitrarily fragmented input.
// It accumulates raw bytes and splits on '\n', so a multi-byte rune cut in
// half by a transport read is never corrupted: a '\n' byte cannot occur
// inside a UTF-8 sequence, and partial runes simply wait in the buffer for
// the next fragment.
//
// At most one partial (non-terminated) line is retained at any time; every
// complete line is removed from the buffer when extracted.
type LineBuffer struct {
	buf []byte
}

// Append adds a received fragment to the buffer.
func (b *LineBuffer) Append(p []byte) {
	b.buf = append(b.buf, p...)
}

// Next extracts the next complete line, without its terminator. A trailing
// '\r' is stripped. ok is false when no complete line is buffered yet.
func (b *LineBuffer) Next() (line string, ok bool) {
	i := bytes.IndexByte(b.buf, '\n')
	if i < 0 {
		return "", false
	}
	raw := b.buf[:i]
	b.buf = b.buf[i+1:]
	if len(raw) > 0 && raw[len(raw)-1] == '\r' {
		raw = raw[:len(raw)-1]
	}
	return string(raw), true
}

// Requeue puts an extracted line back at the front of the buffer. Used when
// a data frame turns out to be incomplete: the line waits for more input to
// complete it instead of being discarded. Callers stop extracting until the
// next Append.
func (b *LineBuffer) Requeue(line string) {
	rest := b.buf
	b.buf = make([]byte, 0, len(line)+1+len(rest))
	b.buf = append(b.buf, line...)
	b.buf = append(b.buf, '\n')
	b.buf = append(b.buf, rest...)
}

// Pending reports whether unterminated input remains buffered.
func (b *LineBuffer) Pending() bool {
	return len(b.buf) > 0
}
