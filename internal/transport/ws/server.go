// Package ws serves the line-based protocol over WebSocket, one line per
// text frame.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-ircd/internal/core"
	"github.com/vovakirdan/wirechat-ircd/internal/proto"
)

// NewServer builds an HTTP server exposing the WebSocket endpoint.
func NewServer(addr string, state *core.State, logger *zerolog.Logger) *stdhttp.Server {
	mux := stdhttp.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/ws", NewWSHandler(state, logger))

	return &stdhttp.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w stdhttp.ResponseWriter, _ *stdhttp.Request) {
	_, _ = fmt.Fprint(w, "ok")
}

// WSHandler upgrades HTTP connections and bridges them to core sessions.
type WSHandler struct {
	state *core.State
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(state *core.State, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{state: state, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		Subprotocols:       []string{"text.ircv3.net"},
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := h.state.Attach(r.RemoteAddr)
	defer h.state.OnDisconnect(sess.ID(), "connection closed")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	conn.SetReadLimit(proto.MaxLineLen * 2)
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		// A frame carries exactly one line; tolerate a trailing CRLF.
		line := strings.TrimRight(string(data), "\r\n")
		h.state.OnLine(sess.ID(), line)

		select {
		case <-sess.Closed():
			return nil
		default:
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	for {
		select {
		case line := <-sess.Outbound():
			// Frames carry the line without its CRLF terminator.
			payload := strings.TrimRight(string(line), "\r\n")
			if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
				h.log.Error().Err(err).Str("conn_id", sess.ID()).Msg("write ws frame")
				return err
			}
		case <-sess.Closed():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
