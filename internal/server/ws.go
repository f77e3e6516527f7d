package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/muurk/echoline/internal/logging"
	"github.com/muurk/echoline/internal/protocol"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser pages from any origin may use the bridge
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsBridge exposes the echo service to WebSocket clients on a separate port.
// Each text message is treated as one line, with the same reserved forms as
// the TCP listener: an empty message closes the connection and STOP shuts
// down the whole service.
type wsBridge struct {
	httpServer *http.Server
}

// startBridge starts the WebSocket bridge listener. A bridge failure is
// logged but does not stop the TCP echo service.
func (s *Server) startBridge() {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.WSPort)
	mux := http.NewServeMux()
	mux.HandleFunc("/echo", s.serveWS)

	s.bridge = &wsBridge{
		httpServer: &http.Server{Addr: addr, Handler: mux},
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logging.Info("WebSocket bridge listening",
			zap.String("addr", addr),
			zap.String("path", "/echo"),
		)
		err := s.bridge.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !s.signal.IsSet() {
			logging.Error("WebSocket bridge failed", zap.Error(err))
		}
	}()
}

// Close stops the bridge listener and its non-upgraded connections.
// Upgraded connections are hijacked from the HTTP server and are closed by
// their paired closer goroutines instead.
func (b *wsBridge) Close() {
	_ = b.httpServer.Close()
}

// serveWS upgrades an HTTP request and echoes text messages until the peer
// disconnects, sends an empty message, or sends a STOP message. The paired
// closer goroutine mirrors the raw TCP handler so shutdown unblocks any
// in-progress read.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if s.signal.IsSet() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	remoteAddr := ws.RemoteAddr().String()
	done := make(chan struct{})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.signal.Done():
			_ = ws.Close()
		case <-done:
		}
	}()

	s.active.Add(1)
	logging.LogConnection(remoteAddr, "websocket_connected")

	defer func() {
		close(done)
		_ = ws.Close()
		s.active.Add(-1)
		logging.LogConnection(remoteAddr, "websocket_closed")
	}()

	for {
		if s.signal.IsSet() {
			return
		}

		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if s.signal.IsSet() {
				return
			}
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				return
			}
			logging.Error("Failed to read WebSocket message",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}

		if msgType != websocket.TextMessage {
			logging.Debug("Ignoring non-text WebSocket message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("message_type", msgType),
			)
			continue
		}

		line := string(data)
		logging.LogWebSocketMessage(remoteAddr, "received", data)

		switch protocol.Classify(line) {
		case protocol.ActionClose:
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case protocol.ActionShutdown:
			logging.LogConnection(remoteAddr, "shutdown_requested")
			_ = ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"))
			s.signal.Set()
			return
		default:
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				if s.signal.IsSet() {
					return
				}
				logging.Error("Failed to write WebSocket message",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
			logging.LogWebSocketMessage(remoteAddr, "sent", data)
		}
	}
}
