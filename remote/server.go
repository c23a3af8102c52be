// Package remote serves a touch pad page so a phone on the same network can
// steer the snake over a websocket.
package remote

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/snekpad/game"
	"github.com/brensch/snekpad/input"
)

const (
	readLimit    = 4 << 10
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second

	// DefaultPadRadius is the joystick radius of the pad page, in CSS pixels.
	DefaultPadRadius = 80
)

//go:embed static
var staticFiles embed.FS

// Controller is the part of a session the pad drives.
// *session.Controller satisfies it.
type Controller interface {
	RequestDirection(d game.Direction)
	Reset()
	Snapshot() game.Snapshot
	Subscribe() (<-chan game.Snapshot, func())
}

type Server struct {
	ctrl      Controller
	logger    *slog.Logger
	padRadius float64
	upgrader  websocket.Upgrader
	clients   atomic.Int64
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithPadRadius(r float64) Option {
	return func(s *Server) { s.padRadius = r }
}

func NewServer(ctrl Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		logger:    slog.Default(),
		padRadius: DefaultPadRadius,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The pad is meant for phones on the local network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clients is the number of connected pads.
func (s *Server) Clients() int64 { return s.clients.Load() }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServer(http.FS(static)))
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	return mux
}

// ListenAndServe serves the pad on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("remote pad listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("remote pad: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("remote pad shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	n := s.clients.Add(1)
	s.logger.Info("pad connected", "remote", r.RemoteAddr, "clients", n)

	updates, cancel := s.ctrl.Subscribe()
	done := make(chan struct{})
	go s.writeLoop(conn, updates, done)

	s.readLoop(conn)

	close(done)
	cancel()
	conn.Close()
	n = s.clients.Add(-1)
	s.logger.Info("pad disconnected", "remote", r.RemoteAddr, "clients", n)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	joy := input.NewJoystick(s.padRadius)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("pad read failed", "error", err)
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.logger.Debug("bad pad message", "error", err)
			continue
		}
		s.handle(joy, msg)
	}
}

func (s *Server) handle(joy *input.Joystick, msg ClientMessage) {
	switch msg.T {
	case MsgDrag:
		if !joy.Dragging() {
			joy.Start()
		}
		if d, ok := joy.Drag(msg.DX, msg.DY); ok {
			s.ctrl.RequestDirection(d)
		}
	case MsgEnd:
		joy.End()
	case MsgButton:
		if d, ok := input.Button(msg.Dir); ok {
			s.ctrl.RequestDirection(d)
		}
	case MsgKey:
		if d, ok := input.KeyDirection(msg.Key); ok {
			s.ctrl.RequestDirection(d)
		}
	case MsgReset:
		if !s.ctrl.Snapshot().Alive {
			s.ctrl.Reset()
		}
	default:
		s.logger.Debug("unknown pad message", "t", msg.T)
	}
}

// writeLoop is the only writer on conn.
func (s *Server) writeLoop(conn *websocket.Conn, updates <-chan game.Snapshot, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ServerMessage{T: MsgState, State: &snap}); err != nil {
				// Unblocks the read loop.
				conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}
