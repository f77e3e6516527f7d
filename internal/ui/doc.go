// Package ui provides terminal UI components for the echoline-client CLI.
//
// This package uses Bubble Tea and Lipgloss to render polished terminal
// output. Most components follow a "run once and exit" pattern: they render
// output compellingly but don't require user interaction. The exception is
// the interactive echo session, a full Bubble Tea program.
//
// # Components
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success/failure/warning boxes with styled information
//   - Session: interactive echo transcript with a text input prompt
//   - ConfirmServiceShutdown: typed confirmation before stopping a server
//   - Printer: plain styled line output for list-shaped commands
//
// # Usage Pattern
//
// One-shot commands render a header, do their work, and finish with a
// result box:
//
//	header := ui.NewHeader("Server Discovery", "echoline-client discover", params)
//	ui.PrintStyledLine(header.Render())
//	// ... do work ...
//	ui.PrintStyledLine(ui.NewSuccessResult("Server stopped", details).Render())
//
// The interactive session wraps a connected client in a Bubble Tea program:
//
//	err := ui.RunSession(c, c.RemoteAddr())
//
// # Logging Integration
//
// This package expects logging to be controlled via the ECHOLINE_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly. Set ECHOLINE_LOG_LEVEL to
// "debug", "info", "warn", or "error" to enable logging output.
package ui
