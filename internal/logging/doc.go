// Package logging provides structured logging for the echoline server.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the server. It provides both general logging functions
// and specialized functions for connection and line-level logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (line contents, bridge messages)
//   - Info: Normal operations (connections, shutdown events, state changes)
//   - Warn: Non-fatal issues (announce failures, slow drains)
//   - Error: Fatal issues (startup failures, accept loop errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Client connected",
//	    zap.String("remote_addr", "192.168.1.100"),
//	    zap.Int("active_connections", 3),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
// Connection Logging:
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogConnection(remoteAddr, "connection_closed")
//	logging.LogConnection(remoteAddr, "shutdown_requested")
//
// Line Logging:
//
//	logging.LogLine(remoteAddr, "received", line)
//	logging.LogLine(remoteAddr, "echoed", line)
//
// # Configuration
//
// Initialize logging at server startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// By default (no level given, ECHOLINE_LOG_LEVEL unset) logging is silent,
// which keeps client command output clean for scripting.
//
// # Output Format
//
// Logs are written to stdout in console format (human-readable) for development
// and can be configured for JSON format in production:
//
//	2025-11-25T10:30:45.123-0800  INFO  Connection event
//	  remote_addr=192.168.1.100
//	  event=connection_accepted
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
