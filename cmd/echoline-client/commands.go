package main

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/echoline/internal/client"
	"github.com/muurk/echoline/internal/config"
	"github.com/muurk/echoline/internal/discovery"
	"github.com/muurk/echoline/internal/ui"
)

// Client command flags
var (
	serverAddr      string
	dialTimeout     int
	discoverTimeout int
	skipConfirm     bool
)

func init() {
	// Common flags for commands that talk to a server (persistent on root)
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "", "Server address (host:port, host, or a remembered instance name)")
	rootCmd.PersistentFlags().IntVar(&dialTimeout, "timeout", 5, "Connection timeout in seconds")

	// Add subcommands directly to root
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(initConfigCmd)
}

// resolveTarget decides which server to talk to: the --server flag, the
// configured default server, or mDNS discovery when auto-discovery is on.
func resolveTarget() (string, error) {
	reg, err := config.LoadRegistry()
	if err != nil {
		// A broken config file should not block an explicit --server
		reg = config.NewRegistry()
	}

	name := serverAddr
	if name == "" && reg.Preferences != nil {
		name = reg.Preferences.DefaultServer
	}

	if name != "" {
		// host:port is already dialable
		if _, _, err := net.SplitHostPort(name); err == nil {
			return name, nil
		}
		return resolveName(reg, name)
	}

	if reg.Preferences != nil && reg.Preferences.AutoDiscover {
		timeout := discovery.DefaultScanTimeout
		if reg.Preferences.DiscoverTimeout > 0 {
			timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
		}
		fmt.Printf("No server given, browsing mDNS (timeout: %s)...\n", timeout)

		services, err := discovery.ScanForServers(timeout)
		if err != nil {
			return "", fmt.Errorf("discovery failed: %w", err)
		}
		if len(services) == 0 {
			return "", fmt.Errorf("no servers found; use --server to specify one")
		}
		if len(services) > 1 {
			ui.PrintStyledLine(ui.NewWarningResult("Multiple servers found", map[string]string{
				"Found": strconv.Itoa(len(services)),
				"Using": services[0].String(),
			}).Render())
		}

		svc := services[0]
		rememberService(reg, svc)
		fmt.Printf("Using %s\n\n", svc)
		return svc.Addr(), nil
	}

	return "", fmt.Errorf("no server specified; use --server or enable auto_discover in the config file")
}

// resolveName turns a non-address server name into a dialable address.
// Remembered instance names and nicknames resolve from the config file. A
// name shaped like an mDNS instance (they contain spaces, hostnames never
// do) is looked up live on the network; anything else is treated as a bare
// host on the default port.
func resolveName(reg *config.Registry, name string) (string, error) {
	if host, port, ok := reg.ResolveServer(name); ok {
		return net.JoinHostPort(host, strconv.Itoa(port)), nil
	}

	if strings.Contains(name, " ") {
		fmt.Printf("%q is not remembered, looking it up via mDNS...\n", name)
		svc, err := discovery.FindServer(name)
		if err != nil {
			return "", fmt.Errorf("server %q not found on the network: %w", name, err)
		}
		rememberService(reg, svc)
		return svc.Addr(), nil
	}

	return net.JoinHostPort(name, strconv.Itoa(config.DefaultPort)), nil
}

// dialTarget resolves the target server and connects to it.
func dialTarget() (*client.Client, error) {
	addr, err := resolveTarget()
	if err != nil {
		return nil, err
	}

	c, err := client.Dial(addr, time.Duration(dialTimeout)*time.Second)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// rememberService records a discovered server in the config file so later
// invocations can address it by instance name. Save failures are ignored;
// remembering servers is a convenience, not a requirement.
func rememberService(reg *config.Registry, svc *discovery.Service) {
	reg.UpdateServerLastSeen(svc.Instance, svc.IP, svc.Port)
	_ = reg.Save()
}

// sendCmd sends lines and prints their echoes
var sendCmd = &cobra.Command{
	Use:   "send <line> [line...]",
	Short: "Send lines and print their echoes",
	Long: `Send one or more lines to the server and print each echo.

Lines are sent in order over a single connection. The empty line and
the literal line "STOP" are reserved by the protocol and are rejected
here; use the 'stop' command to shut a server down.`,
	Example: `  # Echo one line off the default server
  echoline-client send "hello there"

  # Several lines over one connection, explicit server
  echoline-client send --server 192.168.1.50:5432 one two three`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	for _, line := range args {
		if line == "" {
			return fmt.Errorf("cannot send an empty line: the protocol reserves it for closing the connection")
		}
		if line == "STOP" {
			return fmt.Errorf("cannot send %q with this command: use 'echoline-client stop'", line)
		}
	}

	c, err := dialTarget()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	p := ui.NewPrinter(nil)
	for _, line := range args {
		echo, err := c.Send(line)
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		p.Println(ui.SentLineStyle.Render(ui.SentMarker+" "+line) + "  " +
			ui.EchoLineStyle.Render(ui.EchoMarker+" "+echo))
		if echo != line {
			return fmt.Errorf("echo mismatch: sent %q, got %q", line, echo)
		}
	}

	p.Newline()
	p.Println(ui.NoticeStyle.Render(fmt.Sprintf("%d line(s) echoed by %s", len(args), c.RemoteAddr())))
	return nil
}

// sessionCmd opens an interactive echo session
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open an interactive echo session",
	Long: `Open an interactive session with an echo server.

Each line you type is sent to the server and its echo is shown in a
scrolling transcript. Typing "STOP" shuts the whole server down;
Ctrl+C or Esc leaves the session without touching the server.`,
	Example: `  # Session against the default or discovered server
  echoline-client session

  # Session against an explicit server
  echoline-client session --server workshop.local:5432`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func runSession(cmd *cobra.Command, args []string) error {
	c, err := dialTarget()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return ui.RunSession(c, c.RemoteAddr())
}

// stopCmd shuts down a running server
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Shut down a running echo server",
	Long: `Send the protocol's STOP line to a server, shutting the whole
service down: the server closes every open connection, including other
clients' sessions, and stops listening.

The server confirms by closing the connection rather than replying.`,
	Example: `  # Stop the default server (asks for confirmation)
  echoline-client stop

  # Stop a specific server without confirmation
  echoline-client stop --server 192.168.1.50:5432 --yes`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip the confirmation prompt")
}

func runStop(cmd *cobra.Command, args []string) error {
	addr, err := resolveTarget()
	if err != nil {
		return err
	}

	if !skipConfirm && !ui.ConfirmServiceShutdown(addr) {
		return nil
	}

	c, err := client.Dial(addr, time.Duration(dialTimeout)*time.Second)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	p := ui.NewPrinter(nil)
	if err := c.Stop(); err != nil {
		p.PrintError("Server did not confirm shutdown", err, []string{
			"Check that the address points at an echoline server",
			"The server may be mid-shutdown already; try connecting again",
			"Increase --timeout on slow networks",
		})
		return fmt.Errorf("stop failed: %w", err)
	}

	p.PrintSuccess("Server stopped", map[string]string{
		"Server": addr,
	})
	return nil
}

// discoverCmd browses the local network for servers
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover echo servers on the local network",
	Long: `Browse mDNS for echoline servers and list every instance found.

Discovered servers are remembered in the config file, so later
commands can address them by instance name or nickname via --server.`,
	Example: `  # Browse with the default 5 second timeout
  echoline-client discover

  # Longer browse for sleepy networks
  echoline-client discover --scan-timeout 15`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&discoverTimeout, "scan-timeout", 5, "Browse timeout in seconds")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout := time.Duration(discoverTimeout) * time.Second

	p := ui.NewPrinter(nil)
	p.PrintHeader("Server Discovery", "echoline-client discover", map[string]string{
		"Service": discovery.ServiceType,
		"Timeout": timeout.String(),
	})

	services, err := discovery.ScanForServers(timeout)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(services) == 0 {
		p.Println(ui.NoticeStyle.Render("No servers found."))
		p.Newline()
		p.PrintLines(
			"Troubleshooting:",
			"  - Ensure a server is running with --announce",
			"  - mDNS does not cross most routers; stay on the same subnet",
			"  - Try increasing --scan-timeout for slower networks",
			"  - Use --server host:port to skip discovery entirely",
		)
		return nil
	}

	reg, regErr := config.LoadRegistry()
	p.Println(fmt.Sprintf("Found %d server(s):", len(services)))
	p.Newline()
	for i, svc := range services {
		p.Println(fmt.Sprintf("%d. %s", i+1, ui.TitleStyle.Render(svc.Instance)))
		p.Println(fmt.Sprintf("   Address:  %s", svc.Addr()))
		if svc.Hostname != "" {
			p.Println(fmt.Sprintf("   Hostname: %s", strings.TrimSuffix(svc.Hostname, ".")))
		}
		if stop := svc.GetMetadata("stop"); stop != "" {
			p.Println(fmt.Sprintf("   Stop:     send the line %q", stop))
		}
		p.Newline()

		if regErr == nil {
			rememberService(reg, svc)
		}
	}

	p.Println("Use 'echoline-client session --server <address>' to connect")
	return nil
}

// initConfigCmd writes a starter configuration file
var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a starter configuration file",
	Long: `Create the configuration file with default values and an example
remembered server, at the platform's config location. Refuses to
overwrite an existing file.`,
	Args: cobra.NoArgs,
	RunE: runInitConfig,
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to locate config path: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	ui.NewPrinter(nil).PrintSuccess("Configuration file created", map[string]string{
		"Path": path,
	})
	return nil
}
