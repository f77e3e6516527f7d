package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muurk/echoline/internal/discovery"
	"github.com/muurk/echoline/internal/logging"
	"github.com/muurk/echoline/internal/protocol"
	"github.com/muurk/echoline/internal/shutdown"
	"go.uber.org/zap"
)

// DefaultGracePeriod bounds how long Serve waits for connection handlers
// to drain after shutdown begins.
const DefaultGracePeriod = 5 * time.Second

// Config holds the server configuration
type Config struct {
	Host        string        // Listen address (empty = all interfaces)
	Port        int           // TCP listen port
	GracePeriod time.Duration // How long to wait for handlers to drain on shutdown
	Announce    bool          // Advertise the service via mDNS
	Instance    string        // mDNS instance name (empty = hostname-derived)
	WSPort      int           // WebSocket bridge port (0 = disabled)
	LogLevel    string
}

// Server is a line-oriented TCP echo server with cooperative shutdown.
// Every shutdown path (a STOP line, Stop, an accept failure) funnels through
// a single write-once signal; connection handlers and the accept loop use the
// signal's state to tell a deliberate teardown apart from a genuine failure.
type Server struct {
	config *Config
	signal *shutdown.Signal
	wg     sync.WaitGroup
	active atomic.Int64

	announcer *discovery.Announcer
	bridge    *wsBridge
}

// New creates a new Server instance. The config is copied; the caller's
// value is never written to.
func New(config *Config) (*Server, error) {
	// Initialize logging
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	cfg := *config
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}

	return &Server{
		config: &cfg,
		signal: shutdown.NewSignal(),
	}, nil
}

// ListenAndServe opens the TCP listener and blocks until shutdown.
// A listen failure is returned immediately without touching the
// shutdown signal.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting echoline server",
		zap.String("addr", addr),
		zap.Bool("announce", s.config.Announce),
		zap.Int("ws_port", s.config.WSPort),
		zap.String("log_level", s.config.LogLevel),
	)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(listener)
}

// Serve accepts connections on ln and blocks until shutdown. It owns the
// listener and closes it on the way out. The return value is nil after a
// clean shutdown (STOP line or Stop call) and the accept loop's error when
// accepting fails while the service is still meant to be running.
func (s *Server) Serve(ln net.Listener) error {
	logging.Info("Server listening for connections",
		zap.String("addr", ln.Addr().String()),
	)

	if s.config.Announce {
		announcer, err := discovery.Announce(s.config.Instance, s.config.Port)
		if err != nil {
			// Discovery is best-effort; the echo service works without it
			logging.Warn("Failed to announce service via mDNS", zap.Error(err))
		} else {
			s.announcer = announcer
			logging.Info("Service announced via mDNS",
				zap.String("instance", announcer.Instance),
			)
		}
	}

	if s.config.WSPort > 0 {
		s.startBridge()
	}

	// Run the accept loop in its own goroutine so this one can watch the
	// shutdown signal. The buffer lets the loop exit even if the signal
	// arrives first.
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.acceptLoop(ln)
	}()

	var acceptErr error
	select {
	case <-s.signal.Done():
		logging.Info("Shutdown signal received, stopping server...")
		_ = ln.Close()
		// The accept loop unblocks once the listener closes. Its error is
		// expected at this point, but a genuine failure that raced the
		// signal still deserves a log line.
		if err := <-errChan; err != nil {
			logging.Error("Accept loop failed during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		// Accept loop ended on its own: a genuine accept failure. Latch the
		// signal so connection closers tear down the remaining handlers.
		s.signal.Set()
		_ = ln.Close()
		acceptErr = err
	}

	s.teardown()
	return acceptErr
}

// Stop requests a cooperative shutdown. It is safe to call from any
// goroutine and at any time; calls after the first are no-ops.
func (s *Server) Stop() {
	s.signal.Set()
}

// ActiveConnections returns the number of connections currently being handled
func (s *Server) ActiveConnections() int {
	return int(s.active.Load())
}

// acceptLoop accepts connections until the listener fails. An accept error
// with the shutdown signal set means the listener was closed on purpose and
// is not reported; any other error is returned without retrying.
func (s *Server) acceptLoop(ln net.Listener) error {
	for {
		// Cancellation point: shutdown may have been requested between
		// accepts, before the listener close lands.
		if s.signal.IsSet() {
			return nil
		}

		conn, err := ln.Accept()
		if err != nil {
			if s.signal.IsSet() {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection echoes lines on a single connection until the peer
// disconnects, sends an empty line, or sends a STOP line. A paired closer
// goroutine closes the socket when shutdown begins, which unblocks any
// in-progress read; the done channel releases the closer when the
// connection ends on its own.
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	done := make(chan struct{})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		select {
		case <-s.signal.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	s.active.Add(1)
	logging.LogConnection(remoteAddr, "connection_accepted")

	defer func() {
		close(done)
		_ = conn.Close()
		s.active.Add(-1)
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	pc := protocol.NewConn(conn)
	for {
		// Cancellation point: don't start another read once shutdown has
		// been requested; the closer may not have fired yet.
		if s.signal.IsSet() {
			return
		}

		line, err := pc.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Peer disconnected
				return
			}
			if s.signal.IsSet() {
				// Socket closed out from under us by the closer
				return
			}
			logging.Error("Failed to read from connection",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}

		logging.LogLine(remoteAddr, "received", line)

		switch protocol.Classify(line) {
		case protocol.ActionClose:
			return
		case protocol.ActionShutdown:
			logging.LogConnection(remoteAddr, "shutdown_requested")
			s.signal.Set()
			return
		default:
			if err := pc.WriteLine(line); err != nil {
				if s.signal.IsSet() {
					return
				}
				logging.Error("Failed to write to connection",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
			logging.LogLine(remoteAddr, "echoed", line)
		}
	}
}

// teardown withdraws the mDNS advertisement, stops the WebSocket bridge, and
// waits for all connection handlers and closers to finish.
func (s *Server) teardown() {
	if s.announcer != nil {
		s.announcer.Shutdown()
	}
	if s.bridge != nil {
		s.bridge.Close()
	}

	// Wait for all goroutines to finish with timeout
	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		logging.Info("All connections closed gracefully")
	case <-time.After(s.config.GracePeriod):
		logging.Warn("Grace period exceeded before all connections closed",
			zap.Duration("grace_period", s.config.GracePeriod),
			zap.Int("remaining", s.ActiveConnections()),
		)
	}

	logging.Sync()
}
