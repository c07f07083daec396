// Package voltclient invokes stored procedures over one TCP connection.
package voltclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuannm99/novavolt/internal/metrics"
	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/wire"
)

var (
	ErrClosed           = errors.New("voltclient: client closed")
	ErrConnectionBroken = errors.New("voltclient: connection broken")
)

// Client is a synchronous client. Invocations may be issued from several
// goroutines; they are serialized on the connection.
//
// After a transport or protocol error the stream position is unknown, so the
// client refuses further invocations with ErrConnectionBroken. Validation
// errors are raised before anything is written and leave it usable.
//
// Close does not wait for an invocation in flight; it closes the socket under
// it and that invocation fails with ErrClosed.
type Client struct {
	id    string
	cfg   Config
	codec *invocation.Codec
	log   zerolog.Logger

	conn net.Conn
	rw   *bufio.ReadWriter

	mu     sync.Mutex // serializes invocations and guards broken
	seq    atomic.Int64
	broken error
	closed atomic.Bool
}

func Dial(cfg Config) (*Client, error) {
	return DialContext(context.Background(), cfg)
}

func DialContext(ctx context.Context, cfg Config) (*Client, error) {
	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("voltclient: dial %s: %w", cfg.Addr, err)
	}
	return New(conn, cfg), nil
}

// New wraps an established connection. The client owns conn from here on.
func New(conn net.Conn, cfg Config) *Client {
	id := uuid.NewString()
	c := &Client{
		id:    id,
		cfg:   cfg,
		codec: invocation.DefaultCodec,
		conn:  conn,
		rw:    bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
	}
	c.log = cfg.logger().With().
		Str("component", "voltclient").
		Str("client_id", id).
		Str("remote", remoteAddr(conn)).
		Logger()
	c.log.Debug().Msg("connection opened")
	return c
}

// ID identifies this connection in logs.
func (c *Client) ID() string { return c.id }

func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.log.Debug().Msg("connection closed")
	return c.conn.Close()
}

func (c *Client) Invoke(p *invocation.Procedure) (*invocation.Response, error) {
	return c.InvokeContext(context.Background(), p)
}

// Call binds args to p's parameters and invokes it.
func (c *Client) Call(ctx context.Context, p *invocation.Procedure, args ...any) (*invocation.Response, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil procedure", wire.ErrInvalidProcedure)
	}
	if err := p.Params().Bind(args...); err != nil {
		p.Reset()
		return nil, fmt.Errorf("procedure %s: %w", p.Name(), err)
	}
	resp, err := c.InvokeContext(ctx, p)
	if err != nil {
		p.Reset()
	}
	return resp, err
}

// InvokeContext sends one invocation of p and waits for its response.
//
// The procedure's parameter set must be complete. Once the request is
// encoded the set is reset, so p can be refilled for the next call.
// An application-level failure is a successful call: check
// Response.Failure or Response.Err.
func (c *Client) InvokeContext(ctx context.Context, p *invocation.Procedure) (*invocation.Response, error) {
	if c == nil || c.conn == nil {
		return nil, errors.New("voltclient: nil client")
	}
	if p == nil {
		return nil, fmt.Errorf("%w: nil procedure", wire.ErrInvalidProcedure)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.broken != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionBroken, c.broken)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := c.seq.Add(1)
	frame, err := c.codec.EncodeRequest(id, p)
	if err != nil {
		return nil, err
	}
	p.Reset()

	start := time.Now()
	resp, err := c.roundTrip(ctx, id, frame)
	if err != nil {
		c.fail(ctx, p.Name(), id, err)
		if c.closed.Load() {
			return nil, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, fmt.Errorf("voltclient: %w (%w)", ctxErr, err)
		}
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.RecordInvocation(metrics.SideClient, p.Name(), resp.Status.String(), elapsed)
	c.log.Debug().
		Str("procedure", p.Name()).
		Int64("invocation_id", id).
		Stringer("status", resp.Status).
		Int("tables", len(resp.Results)).
		Dur("elapsed", elapsed).
		Msg("invocation done")
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, id int64, frame []byte) (*invocation.Response, error) {
	if err := c.applyDeadline(ctx); err != nil {
		return nil, err
	}
	defer func() {
		// Clear deadline after request so idle connection doesn't expire.
		_ = c.conn.SetDeadline(time.Time{})
	}()
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := c.codec.WriteFrame(c.rw, frame); err != nil {
		return nil, err
	}
	if err := c.rw.Flush(); err != nil {
		return nil, err
	}

	body, err := c.codec.ReadFrame(c.rw, c.cfg.maxFrame())
	if err != nil {
		return nil, err
	}
	resp, err := c.codec.DecodeResponse(body)
	if err != nil {
		return nil, err
	}
	if resp.InvocationID != id {
		return nil, fmt.Errorf("%w: got=%d want=%d", wire.ErrCorrelationMismatch, resp.InvocationID, id)
	}
	return resp, nil
}

func (c *Client) applyDeadline(ctx context.Context) error {
	// Prefer context deadline if present; otherwise use RWTimeout.
	if dl, ok := ctx.Deadline(); ok {
		return c.conn.SetDeadline(dl)
	}
	if c.cfg.RWTimeout > 0 {
		return c.conn.SetDeadline(time.Now().Add(c.cfg.RWTimeout))
	}
	return nil
}

func (c *Client) fail(ctx context.Context, proc string, id int64, err error) {
	c.broken = err
	if errors.Is(err, wire.ErrProtocol) {
		metrics.RecordProtocolError(metrics.SideClient)
	}
	metrics.RecordInvocation(metrics.SideClient, proc, invocation.StatusConnectionLost.String(), 0)
	c.log.Warn().
		Err(err).
		Str("procedure", proc).
		Int64("invocation_id", id).
		Bool("canceled", contextError(ctx) != nil).
		Msg("invocation failed; connection marked broken")
}

// contextError is ctx.Err, except that a deadline already in the past counts
// even if the context timer has not fired yet. The connection deadline is
// set to the same instant and may trip first.
func contextError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok && !time.Now().Before(dl) {
		return context.DeadlineExceeded
	}
	return nil
}

func remoteAddr(conn net.Conn) string {
	if a := conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}
