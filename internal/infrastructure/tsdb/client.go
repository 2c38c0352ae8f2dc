package tsdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
	"github.com/nerrad567/influxwire/internal/pipeline"
)

// maxResponseSize bounds how much of a response body is buffered.
const maxResponseSize = 10 << 20 // 10 MB

// Client talks to an InfluxDB 1.x compatible HTTP API.
//
// The write and query endpoints are resolved once in New. Every call is an
// independent request: nothing is batched, retried or cached between calls.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	database   string
	writeURL   string
	queryURL   string
	pingURL    string
	httpClient *http.Client
	rows       RowPolicy
	maxBody    int64
}

var _ pipeline.Writer = (*Client)(nil)

// New creates a client for the database named in cfg.
//
// It performs no I/O. Use Ping to check the server is reachable.
//
// Parameters:
//   - cfg: TSDB configuration; URL must carry a scheme and host
//
// Returns:
//   - *Client: Client ready for use
//   - error: ErrInvalidURL if the base URL or database name is unusable
func New(cfg config.TSDBConfig) (*Client, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q is not http or https", ErrInvalidURL, base.Scheme)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidURL, cfg.URL)
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("%w: database name is required", ErrInvalidURL)
	}
	base.RawQuery = ""
	base.Fragment = ""

	db := url.Values{"db": {cfg.Database}}

	rows := RowsTolerate
	if cfg.StrictRows {
		rows = RowsStrict
	}

	return &Client{
		database:   cfg.Database,
		writeURL:   base.JoinPath("write").String() + "?" + db.Encode(),
		queryURL:   base.JoinPath("query").String(),
		pingURL:    base.JoinPath("ping").String(),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		rows:       rows,
		maxBody:    maxResponseSize,
	}, nil
}

// Database returns the database name sent with every request.
func (c *Client) Database() string { return c.database }

// WriteURL returns the resolved write endpoint, including the db parameter.
func (c *Client) WriteURL() string { return c.writeURL }

// QueryURL returns the resolved query endpoint, without parameters.
func (c *Client) QueryURL() string { return c.queryURL }

// Ping checks the server answers GET /ping with a success status.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pingURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))

	if !success(resp.StatusCode) {
		return &RejectedError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.httpClient.CloseIdleConnections()
	return nil
}

// WriteAsync starts Write in the background and returns its Future.
func (c *Client) WriteAsync(ctx context.Context, payload []byte) *pipeline.Future[struct{}] {
	return pipeline.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Write(ctx, payload)
	})
}

// QueryAsync starts Query in the background and returns its Future.
func (c *Client) QueryAsync(ctx context.Context, statement string) *pipeline.Future[*QueryResponse] {
	return pipeline.Go(ctx, func(ctx context.Context) (*QueryResponse, error) {
		return c.Query(ctx, statement)
	})
}

// do sends req and returns the buffered body of a success response.
//
// Failures are classified in order: a request that produced no complete
// response is ErrTransport (a body over the buffering limit also wraps
// ErrResponseTooLarge); a non-success status is a *RejectedError when
// the body carries {"error": "..."} and ErrDecode otherwise.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	// One byte past the limit tells a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransport, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %w: HTTP %d body exceeds %d bytes",
			ErrTransport, ErrResponseTooLarge, resp.StatusCode, c.maxBody)
	}

	if !success(resp.StatusCode) {
		return nil, rejection(resp.StatusCode, body)
	}
	return body, nil
}

// rejection decodes the error body of a non-success response.
func rejection(status int, body []byte) error {
	var payload struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: HTTP %d error body: %w", ErrDecode, status, err)
	}
	if payload.Error == nil {
		return fmt.Errorf("%w: HTTP %d error body has no error message", ErrDecode, status)
	}
	return &RejectedError{StatusCode: status, Message: *payload.Error}
}

func success(status int) bool {
	return status >= 200 && status < 300
}
