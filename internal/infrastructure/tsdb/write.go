package tsdb

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/nerrad567/influxwire/internal/lineproto"
)

// Write posts a line protocol payload to the write endpoint.
//
// The payload is sent as-is; it should be newline-separated lines as
// produced by lineproto.EncodeBatch or pipeline.Chunk.
//
// Returns:
//   - error: nil on any 2xx status; ErrTransport, *RejectedError or ErrDecode otherwise
func (c *Client) Write(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := c.do(req); err != nil {
		return err
	}
	return nil
}

// WriteMeasurements encodes ms as one batch with enc and writes it.
// An encoding failure is returned before any request is made.
func (c *Client) WriteMeasurements(ctx context.Context, enc lineproto.Encoder, ms ...lineproto.Measurement) error {
	payload, err := enc.EncodeBatch(ms)
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	return c.Write(ctx, payload)
}
