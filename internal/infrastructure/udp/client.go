package udp

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/nerrad567/influxwire/internal/infrastructure/config"
	"github.com/nerrad567/influxwire/internal/pipeline"
)

// MaxPayloadSize is the largest UDP payload over IPv4.
const MaxPayloadSize = 65507

const defaultLocalAddress = "0.0.0.0:0"

// Client sends line protocol payloads to an InfluxDB UDP listener.
//
// Delivery is fire and forget: a nil error means the datagram left this
// host, not that the database stored it. The UDP listener decides which
// database the points land in.
//
// Thread Safety: A Client is immutable and safe for concurrent use.
type Client struct {
	remote *net.UDPAddr
	local  *net.UDPAddr
}

var _ pipeline.Writer = (*Client)(nil)

// New resolves the remote and local addresses in cfg.
//
// Returns:
//   - *Client: Client ready for use
//   - error: ErrInvalidAddress if either address cannot be resolved
func New(cfg config.UDPConfig) (*Client, error) {
	remote, err := net.ResolveUDPAddr("udp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: remote %q: %w", ErrInvalidAddress, cfg.Address, err)
	}
	if remote.Port == 0 {
		return nil, fmt.Errorf("%w: remote %q has no port", ErrInvalidAddress, cfg.Address)
	}

	localAddr := cfg.LocalAddress
	if localAddr == "" {
		localAddr = defaultLocalAddress
	}
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: local %q: %w", ErrInvalidAddress, localAddr, err)
	}

	return &Client{remote: remote, local: local}, nil
}

// RemoteAddr returns the listener address datagrams are sent to.
func (c *Client) RemoteAddr() net.Addr { return c.remote }

// Write sends payload as one datagram from a freshly bound socket.
// The socket is closed before Write returns.
func (c *Client) Write(ctx context.Context, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	conn, err := net.ListenUDP("udp", c.local)
	if err != nil {
		return fmt.Errorf("%w: binding %s: %w", ErrSendFailed, c.local, err)
	}
	defer conn.Close()

	return send(ctx, conn, c.remote, payload)
}

// WriteAsync starts Write in the background and returns its Future.
func (c *Client) WriteAsync(ctx context.Context, payload []byte) *pipeline.Future[struct{}] {
	return pipeline.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Write(ctx, payload)
	})
}

// Open binds a long-lived socket for repeated sends to the client's remote.
// The caller owns the socket and must Close it.
func (c *Client) Open() (*Socket, error) {
	conn, err := net.ListenUDP("udp", c.local)
	if err != nil {
		return nil, fmt.Errorf("%w: binding %s: %w", ErrSendFailed, c.local, err)
	}
	return &Socket{conn: conn, remote: c.remote}, nil
}

// SendOn sends payload through s to the client's remote address.
func (c *Client) SendOn(ctx context.Context, s *Socket, payload []byte) error {
	return s.sendTo(ctx, c.remote, payload)
}

// Socket is an explicitly owned UDP socket.
//
// Unlike Client.Write, sends through a Socket reuse one local port.
// A Socket is safe for concurrent use.
type Socket struct {
	conn   *net.UDPConn
	remote *net.UDPAddr

	mu     sync.RWMutex
	closed bool
}

var _ pipeline.Writer = (*Socket)(nil)

// LocalAddr returns the bound local address.
func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Write sends payload as one datagram to the remote the socket was opened for.
func (s *Socket) Write(ctx context.Context, payload []byte) error {
	return s.sendTo(ctx, s.remote, payload)
}

func (s *Socket) sendTo(ctx context.Context, remote *net.UDPAddr, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return send(ctx, s.conn, remote, payload)
}

// Close releases the socket. Closing twice is a no-op.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// send writes one datagram, honouring a context deadline if present.
func send(ctx context.Context, conn *net.UDPConn, remote *net.UDPAddr, payload []byte) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}

	n, err := conn.WriteToUDP(payload, remote)
	if err != nil {
		return fmt.Errorf("%w: sending to %s: %w", ErrSendFailed, remote, err)
	}
	if n != len(payload) {
		return fmt.Errorf("%w: short write %d of %d bytes", ErrSendFailed, n, len(payload))
	}
	return nil
}
