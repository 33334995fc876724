// Package tcp serves the plain line-based protocol over TCP sockets.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/core"
	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// Server accepts TCP connections and bridges them to core sessions.
type Server struct {
	addr         string
	state        *core.State
	log          *zerolog.Logger
	pingInterval time.Duration
	idleTimeout  time.Duration

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewServer builds a TCP server. pingInterval and idleTimeout of zero
// disable the respective check.
func NewServer(addr string, state *core.State, logger *zerolog.Logger, pingInterval, idleTimeout time.Duration) *Server {
	return &Server{
		addr:         addr,
		state:        state,
		log:          logger,
		pingInterval: pingInterval,
		idleTimeout:  idleTimeout,
	}
}

// Run listens and serves until ctx is cancelled. It returns once every
// connection handler has finished.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.log.Info().Str("addr", s.addr).Msg("tcp listener started")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}

	s.wg.Wait()
	return nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sess := s.state.Attach(conn.RemoteAddr().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.readLoop(conn, sess)
	}()
	go func() {
		errCh <- s.writeLoop(ctx, conn, sess)
	}()
	if s.pingInterval > 0 {
		go s.keepAlive(ctx, sess)
	}

	err := <-errCh
	cancel()
	conn.Close() // unblock the reader if the writer finished first
	<-errCh

	reason := "connection closed"
	if err != nil && !errors.Is(err, net.ErrClosed) && ctx.Err() == nil {
		s.log.Debug().Err(err).Str("conn_id", sess.ID()).Msg("tcp connection error")
	}
	s.state.OnDisconnect(sess.ID(), reason)
}

func (s *Server) readLoop(conn net.Conn, sess *core.Session) error {
	scanner := bufio.NewScanner(conn)
	// Oversized lines kill the connection rather than being split.
	scanner.Buffer(make([]byte, proto.MaxLineLen), proto.MaxLineLen*2)
	for scanner.Scan() {
		s.state.OnLine(sess.ID(), scanner.Text())
		select {
		case <-sess.Closed():
			return nil
		default:
		}
	}
	return scanner.Err()
}

func (s *Server) writeLoop(ctx context.Context, conn net.Conn, sess *core.Session) error {
	for {
		select {
		case line := <-sess.Outbound():
			if err := conn.SetWriteDeadline(time.Now().Add(30 * time.Second)); err != nil {
				return err
			}
			if _, err := conn.Write(line); err != nil {
				return err
			}
		case <-sess.Closed():
			// Drain what was queued before the close so QUIT/ERROR lines
			// reach the peer.
			for {
				select {
				case line := <-sess.Outbound():
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if _, err := conn.Write(line); err != nil {
						return nil
					}
				default:
					return nil
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// keepAlive pings idle connections and drops dead ones.
func (s *Server) keepAlive(ctx context.Context, sess *core.Session) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if s.idleTimeout > 0 && time.Since(sess.IdleSince()) > s.idleTimeout {
				s.state.OnDisconnect(sess.ID(), core.ErrIdleTimeout.Error())
				return
			}
			ping := proto.NewMessage("PING", s.state.ServerName())
			sess.Enqueue(ping.Bytes())
		case <-sess.Closed():
			return
		case <-ctx.Done():
			return
		}
	}
}
