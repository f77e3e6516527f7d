// Package server implements a line-oriented TCP echo server with
// cooperative shutdown.
//
// The server accepts plain TCP connections and echoes back every line a
// client sends. Two line values are reserved: an empty line closes that
// connection without a response, and the literal line "STOP" closes the
// connection and shuts down the entire service, including every other
// connection still open.
//
// # Shutdown Protocol
//
// All shutdown paths converge on a single write-once signal:
//   - a client sends a STOP line
//   - Stop is called (typically from a SIGINT/SIGTERM handler)
//   - the accept loop fails for a reason other than shutdown
//
// Once the signal is set it never resets. Every component observes the
// same signal, so teardown needs no coordination beyond it:
//  1. The supervisor closes the listener, which unblocks the accept loop.
//  2. A closer goroutine paired with each connection closes its socket,
//     which unblocks any handler stuck in a read.
//  3. Handlers treat I/O errors observed with the signal set as the
//     expected result of teardown, not failures.
//  4. The supervisor waits for all handlers and closers to finish, bounded
//     by the configured grace period.
//
// Errors are classified by the signal's state at the moment they are
// observed, never by error message text. An accept or read failure with the
// signal set is routine; the same failure with the signal clear is genuine
// and is logged (for handlers) or returned (for the accept loop, which does
// not retry).
//
// # WebSocket Bridge
//
// With a nonzero WSPort the server also exposes the echo service to
// WebSocket clients at ws://host:port/echo. Each text message is one line
// with the same reserved forms, so a STOP message from a browser shuts the
// whole service down too. Bridge connections participate in the same
// shutdown protocol with their own paired closers.
//
// # Usage Example
//
//	// Create server configuration
//	config := &server.Config{
//	    Host:        "",   // Listen on all interfaces
//	    Port:        5432, // Default echo port
//	    GracePeriod: 5 * time.Second,
//	    LogLevel:    "info",
//	}
//
//	// Create and start server
//	srv, err := server.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// ListenAndServe blocks until shutdown; nil means a clean stop
//	if err := srv.ListenAndServe(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Exit Semantics
//
// ListenAndServe returns nil after a clean shutdown regardless of how it
// was triggered. It returns an error when the initial listen fails or when
// the accept loop fails while the service is still meant to be running, so
// callers can translate the two outcomes into process exit codes.
//
// # Thread Safety
//
// The server is fully concurrent and handles multiple connections
// simultaneously. Each connection runs in its own goroutine with an
// independent closer goroutine, and Stop may be called from any goroutine.
package server
