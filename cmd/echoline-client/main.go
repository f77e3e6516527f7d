// Echoline-client is a companion utility for the echoline echo server.
//
// It provides server discovery, one-shot line sending, an interactive
// session, and a stop command that shuts down a running server via the
// protocol's STOP line.
//
// Usage:
//
//	echoline-client [command] [flags]
//
// Running without arguments launches an interactive session.
// See 'echoline-client --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/echoline/internal/logging"
	"github.com/muurk/echoline/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "echoline-client",
	Short: "Echoline Client Utility",
	Long: `A client utility for the echoline TCP echo server.

Provides server discovery over mDNS, one-shot line sending, an
interactive echo session, and remote shutdown via the protocol's
STOP line.

If no command is specified, an interactive session is started.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless ECHOLINE_LOG_LEVEL is set; the styled command
		// output is the client's interface, not log lines
		return logging.InitializeFromEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open a session when no subcommand is given
		return runSession(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("echoline-client %s\n", version.Full())
	},
}
