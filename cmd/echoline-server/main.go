// Echoline-server is a line-oriented TCP echo server built around a
// cooperative shutdown protocol.
//
// The server echoes each received line back to the client. An empty line
// closes that connection; the literal line "STOP" shuts down the entire
// service, closing every open connection and the listening socket.
//
// Usage:
//
//	echoline-server serve [port] [flags]
//
// See 'echoline-server serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/echoline/internal/config"
	"github.com/muurk/echoline/internal/server"
	"github.com/muurk/echoline/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "echoline-server",
	Short: "Echoline TCP Echo Server",
	Long: `A line-oriented TCP echo server with cooperative shutdown.

The server echoes every line a client sends. Two lines are reserved:
an empty line closes that client's connection, and the literal line
"STOP" shuts down the whole service, force-closing every other open
connection and the listening socket.

Note: For sending lines and stopping a running server, use the
separate 'echoline-client' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host        string
	port        int
	gracePeriod int
	announce    bool
	instance    string
	wsPort      int
	logLevel    string
)

var serveCmd = &cobra.Command{
	Use:   "serve [port]",
	Short: "Start the echo server",
	Long: `Start the echo server and block until shutdown.

The listen port may be given as a positional argument or with --port;
the positional form wins when both are present and it parses as an
integer. An argument that does not parse keeps an explicit --port, or
falls back silently to the default port.

The server runs until a client sends the line "STOP" or the process
receives SIGINT/SIGTERM. Either way it stops accepting connections,
force-closes every open connection, waits up to the grace period for
handlers to drain, and exits 0. A failure to open the listening socket
or an accept failure unrelated to shutdown exits 1.`,
	Example: `  # Listen on the default port (5432)
  echoline-server serve

  # Listen on port 7000 with debug logging
  echoline-server serve 7000 --log-level debug

  # Advertise the server on the local network via mDNS
  echoline-server serve --announce --instance "echoline on workshop"

  # Also expose the echo service to WebSocket clients on port 8080
  echoline-server serve --ws-port 8080`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 0, "TCP listen port (0 = config file or default)")
	serveCmd.Flags().IntVar(&gracePeriod, "grace-period", 0, "Shutdown drain timeout in seconds (0 = config file or default)")
	serveCmd.Flags().BoolVar(&announce, "announce", false, "Advertise the service via mDNS")
	serveCmd.Flags().StringVar(&instance, "instance", "", "mDNS instance name (empty = hostname-derived)")
	serveCmd.Flags().IntVar(&wsPort, "ws-port", 0, "WebSocket bridge port (0 = disabled)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := buildServerConfig(cmd, args)

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Translate OS signals into the same cooperative stop a STOP line
	// triggers. The handler stays installed for the whole run; a second
	// signal hits the already-set latch and is a no-op.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		srv.Stop()
	}()

	return srv.ListenAndServe()
}

// buildServerConfig merges the three configuration layers: command-line
// flags override the config file, which overrides built-in defaults. A
// config file that cannot be read is ignored; the server must come up on
// defaults even with a corrupt preferences file.
func buildServerConfig(cmd *cobra.Command, args []string) *server.Config {
	cfg := &server.Config{
		Port:        config.DefaultPort,
		GracePeriod: server.DefaultGracePeriod,
	}

	if reg, err := config.LoadRegistry(); err == nil && reg.Server != nil {
		if reg.Server.Host != "" {
			cfg.Host = reg.Server.Host
		}
		if reg.Server.Port > 0 {
			cfg.Port = reg.Server.Port
		}
		if reg.Server.GracePeriod > 0 {
			cfg.GracePeriod = time.Duration(reg.Server.GracePeriod) * time.Second
		}
		cfg.Announce = reg.Server.Announce
		cfg.Instance = reg.Server.Instance
		cfg.WSPort = reg.Server.WSPort
		if reg.Server.LogLevel != "" {
			cfg.LogLevel = reg.Server.LogLevel
		}
	}

	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("grace-period") {
		cfg.GracePeriod = time.Duration(gracePeriod) * time.Second
	}
	if cmd.Flags().Changed("announce") {
		cfg.Announce = announce
	}
	if cmd.Flags().Changed("instance") {
		cfg.Instance = instance
	}
	if cmd.Flags().Changed("ws-port") {
		cfg.WSPort = wsPort
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}

	if len(args) > 0 {
		applyPositionalPort(cfg, args[0], cmd.Flags().Changed("port"))
	}

	return cfg
}

// applyPositionalPort applies the optional positional port argument, which
// wins over every other layer when it parses. An unparseable value leaves an
// explicit --port standing and otherwise falls back to the default port.
func applyPositionalPort(cfg *server.Config, arg string, portFlagSet bool) {
	if !portFlagSet {
		cfg.Port = config.PortOrDefault(arg)
		return
	}
	if port, err := strconv.Atoi(arg); err == nil {
		cfg.Port = port
	}
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("echoline-server %s\n", version.Full())
	},
}
