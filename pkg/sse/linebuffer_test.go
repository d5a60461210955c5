package sse

import "testing"

func drainLines(b *LineBuffer) []string {
	var lines []string
	for {
		line, ok := b.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

func TestLineBufferFragmentation(t *testing.T) {
	// Multi-byte runes make sure a split inside a UTF-8 sequence survives.
	input := "data: {\"a\":1}\nhéllo wörld 🧠\n: heartbeat\n\ndata: [DONE]\n"
	want := []string{"data: {\"a\":1}", "héllo wörld 🧠", ": heartbeat", "", "data: [DONE]"}

	// Every fragment size, including 1, must yield the same line sequence
	// as a single push.
	for size := 1; size <= len(input); size++ {
		var b LineBuffer
		var got []string
		for i := 0; i < len(input); i += size {
			end := i + size
			if end > len(input) {
				end = len(input)
			}
			b.Append([]byte(input[i:end]))
			got = append(got, drainLines(&b)...)
		}
		if len(got) != len(want) {
			t.Fatalf("size %d: got %d lines, want %d: %q", size, len(got), len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("size %d: line %d = %q, want %q", size, i, got[i], want[i])
			}
		}
		if b.Pending() {
			t.Errorf("size %d: buffer not empty after terminated input", size)
		}
	}
}

func TestLineBufferPartialLineRetained(t *testing.T) {
	var b LineBuffer
	b.Append([]byte("data: {\"par"))
	if _, ok := b.Next(); ok {
		t.Fatal("extracted a line from unterminated input")
	}
	if !b.Pending() {
		t.Fatal("partial line not retained")
	}

	b.Append([]byte("tial\"}\n"))
	line, ok := b.Next()
	if !ok || line != "data: {\"partial\"}" {
		t.Fatalf("got %q, %v", line, ok)
	}
}

func TestLineBufferStripsCarriageReturn(t *testing.T) {
	var b LineBuffer
	b.Append([]byte("data: x\r\n"))
	line, ok := b.Next()
	if !ok || line != "data: x" {
		t.Fatalf("got %q, %v", line, ok)
	}
}

func TestLineBufferRequeue(t *testing.T) {
	var b LineBuffer
	b.Append([]byte("data: {\"del\nnext\n"))

	line, ok := b.Next()
	if !ok || line != "data: {\"del" {
		t.Fatalf("got %q, %v", line, ok)
	}

	// Push the line back; it must come out first again, ahead of buffered
	// input, once more data arrives.
	b.Requeue(line)
	again, ok := b.Next()
	if !ok || again != line {
		t.Fatalf("requeued line = %q, want %q", again, line)
	}
	next, ok := b.Next()
	if !ok || next != "next" {
		t.Fatalf("line after requeue = %q, want %q", next, "next")
	}
}

func TestLineBufferSplitFrameCompletes(t *testing.T) {
	// A data frame split mid-payload carries no newline at the split point,
	// so the first fragment stays buffered until the continuation arrives.
	var b LineBuffer
	b.Append([]byte(`data: {"choices":[{"del`))
	if _, ok := b.Next(); ok {
		t.Fatal("extracted a line from a split frame")
	}

	b.Append([]byte("ta\":{\"content\":\"x\"}}]}\n"))
	line, ok := b.Next()
	if !ok || line != `data: {"choices":[{"delta":{"content":"x"}}]}` {
		t.Fatalf("got %q, %v", line, ok)
	}
}
