// Package voltwire serves stored procedures over the invocation wire
// protocol. Procedures are plain Go handlers registered by name.
package voltwire

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tuannm99/novavolt/internal"
	"github.com/tuannm99/novavolt/internal/logging"
	"github.com/tuannm99/novavolt/internal/metrics"
	"github.com/tuannm99/novavolt/pkg/invocation"
	"github.com/tuannm99/novavolt/pkg/param"
)

type ServerConfig struct {
	Addr         string
	MaxFrameSize int
	Logger       *zerolog.Logger
}

func ServerConfigFrom(cfg *internal.NovaVoltConfig, logger *zerolog.Logger) ServerConfig {
	return ServerConfig{
		Addr:         cfg.Server.Addr,
		MaxFrameSize: cfg.Client.MaxFrameSize,
		Logger:       logger,
	}
}

type Server struct {
	cfg   ServerConfig
	codec *invocation.Codec
	log   zerolog.Logger

	mu    sync.RWMutex
	procs map[string]*procedure

	connMu  sync.Mutex
	conns   map[net.Conn]struct{}
	lns     map[net.Listener]struct{}
	closing bool
	wg      sync.WaitGroup
}

func NewServer(cfg ServerConfig) *Server {
	logger := logging.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Server{
		cfg:   cfg,
		codec: invocation.DefaultCodec,
		log:   logger.With().Str("component", "voltwire").Logger(),
		procs: make(map[string]*procedure),
		conns: make(map[net.Conn]struct{}),
		lns:   make(map[net.Listener]struct{}),
	}
}

// Handle registers h under name, replacing any previous handler. When
// signature is non-nil, requests are checked and widened against it before
// h runs.
func (s *Server) Handle(name string, signature []param.Parameter, h HandlerFunc) error {
	if name == "" || h == nil {
		return errors.New("voltwire: handler needs a name and a func")
	}
	if signature != nil {
		if _, err := param.NewParameterSet(signature); err != nil {
			return fmt.Errorf("voltwire: procedure %s: %w", name, err)
		}
	}
	s.mu.Lock()
	s.procs[name] = &procedure{name: name, signature: signature, handler: h}
	s.mu.Unlock()
	return nil
}

func (s *Server) lookup(name string) (*procedure, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.procs[name]
	return p, ok
}

func (s *Server) maxFrame() int {
	if s.cfg.MaxFrameSize > 0 {
		return s.cfg.MaxFrameSize
	}
	return s.codec.Format.MaxFrameSize
}

// ListenAndServe listens on cfg.Addr until ctx is done or Close is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. It returns nil once ctx is done or the
// server is closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.track(ln, true) {
		_ = ln.Close()
		return nil
	}
	defer s.track(ln, false)
	defer func() { _ = ln.Close() }()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("voltwire server listening")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || s.isClosing() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error().Err(err).Msg("accept")
			return err
		}
		if !s.track(conn, true) {
			_ = conn.Close()
			return nil
		}
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.ServeConn(ctx, conn)
		}()
	}
}

// ServeConn answers invocations on conn until the peer hangs up, a frame
// cannot be read, or ctx is done. It closes conn.
func (s *Server) ServeConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	// No global deadline; requests are served as they arrive.
	_ = conn.SetDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	log.Debug().Msg("connection accepted")

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		body, err := s.codec.ReadFrame(r, s.maxFrame())
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
				metrics.RecordProtocolError(metrics.SideServer)
				log.Warn().Err(err).Msg("read frame")
			}
			return
		}

		frame, ok := s.serveFrame(ctx, log, body)
		if !ok {
			return
		}
		if err := s.codec.WriteFrame(w, frame); err != nil {
			log.Warn().Err(err).Msg("write frame")
			return
		}
		if err := w.Flush(); err != nil {
			log.Warn().Err(err).Msg("flush")
			return
		}
	}
}

// serveFrame turns one request body into one response frame. It reports false
// when the body is too short to carry an invocation id, since no response can
// be correlated.
func (s *Server) serveFrame(ctx context.Context, log zerolog.Logger, body []byte) ([]byte, bool) {
	req, err := s.codec.DecodeRequest(body)
	if err != nil {
		metrics.RecordProtocolError(metrics.SideServer)
		id, ok := s.codec.PeekID(body)
		if !ok {
			log.Warn().Err(err).Msg("request without invocation id")
			return nil, false
		}
		log.Warn().Err(err).Int64("invocation_id", id).Msg("malformed request")
		return s.encode(log, failure(id, invocation.StatusUnexpectedFailure, err.Error())), true
	}

	start := time.Now()
	resp := s.dispatch(ctx, req)
	elapsed := time.Since(start)

	resp.InvocationID = req.InvocationID
	resp.ClusterRoundTrip = int32(elapsed.Milliseconds())
	metrics.RecordInvocation(metrics.SideServer, req.Procedure, resp.Status.String(), elapsed)
	log.Debug().
		Str("procedure", req.Procedure).
		Int64("invocation_id", req.InvocationID).
		Stringer("status", resp.Status).
		Dur("elapsed", elapsed).
		Msg("invocation")
	return s.encode(log, resp), true
}

func (s *Server) dispatch(ctx context.Context, req *invocation.Request) (resp *invocation.Response) {
	p, ok := s.lookup(req.Procedure)
	if !ok {
		return failure(req.InvocationID, invocation.StatusGracefulFailure,
			fmt.Sprintf("Procedure %s was not found", req.Procedure))
	}
	if err := p.bind(req); err != nil {
		return failure(req.InvocationID, invocation.StatusGracefulFailure, err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("procedure", req.Procedure).Interface("panic", r).Msg("handler panic")
			resp = failure(req.InvocationID, invocation.StatusUnexpectedFailure, fmt.Sprint(r))
		}
	}()

	out, err := p.handler(ctx, req)
	if err != nil {
		var af *invocation.ApplicationFailure
		if errors.As(err, &af) {
			return &invocation.Response{
				Status:          af.Status,
				StatusString:    af.Message,
				AppStatus:       af.AppStatus,
				AppStatusString: af.AppStatusString,
			}
		}
		return failure(req.InvocationID, invocation.StatusUnexpectedFailure, err.Error())
	}
	if out == nil {
		return Results()
	}
	if out.Status == 0 {
		out.Status = invocation.StatusSuccess
	}
	return out
}

func (s *Server) encode(log zerolog.Logger, resp *invocation.Response) []byte {
	frame, err := s.codec.EncodeResponse(resp)
	if err == nil {
		return frame
	}
	log.Error().Err(err).Int64("invocation_id", resp.InvocationID).Msg("encode response")
	frame, err = s.codec.EncodeResponse(failure(resp.InvocationID, invocation.StatusUnexpectedFailure, err.Error()))
	if err != nil {
		// Only a status string beyond the frame limit gets here.
		frame, _ = s.codec.EncodeResponse(failure(resp.InvocationID, invocation.StatusUnexpectedFailure, ""))
	}
	return frame
}

func failure(id int64, status invocation.Status, msg string) *invocation.Response {
	return &invocation.Response{InvocationID: id, Status: status, StatusString: msg}
}

// Close stops every listener and connection and waits for the handlers.
func (s *Server) Close() error {
	s.connMu.Lock()
	s.closing = true
	for ln := range s.lns {
		_ = ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Server) isClosing() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.closing
}

// track adds or removes a listener or connection. Adding fails once the
// server is closing. An added connection counts toward Close's wait until the
// caller calls wg.Done.
func (s *Server) track(v any, add bool) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if add && s.closing {
		return false
	}
	switch x := v.(type) {
	case net.Listener:
		if add {
			s.lns[x] = struct{}{}
		} else {
			delete(s.lns, x)
		}
	case net.Conn:
		if add {
			s.conns[x] = struct{}{}
			s.wg.Add(1)
		} else {
			delete(s.conns, x)
		}
	}
	return true
}
