package pipeline

import (
	"bytes"
	"context"
)

// Writer sends one line protocol payload.
type Writer interface {
	Write(ctx context.Context, payload []byte) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(ctx context.Context, payload []byte) error

// Write calls f.
func (f WriterFunc) Write(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

// WriteAll sends every payload through w with at most limit writes in flight.
func WriteAll(ctx context.Context, w Writer, payloads [][]byte, limit int) Outcome[[]byte, struct{}] {
	return Run(ctx, payloads, limit, func(ctx context.Context, p []byte) (struct{}, error) {
		return struct{}{}, w.Write(ctx, p)
	})
}

// Chunk groups encoded lines into payloads of at most size lines each.
// Each line in a payload is terminated by a newline. Lines that already end
// in a newline are not given a second one. Empty lines are dropped.
func Chunk(lines [][]byte, size int) [][]byte {
	if size < 1 {
		size = 1
	}

	var (
		out [][]byte
		buf bytes.Buffer
		n   int
	)
	flush := func() {
		if n == 0 {
			return
		}
		out = append(out, bytes.Clone(buf.Bytes()))
		buf.Reset()
		n = 0
	}

	for _, line := range lines {
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		buf.Write(line)
		buf.WriteByte('\n')
		n++
		if n == size {
			flush()
		}
	}
	flush()
	return out
}
