package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type echoline servers advertise
	ServiceType = "_echoline._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for server discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default TCP port for echoline servers
	DefaultPort = 5432
)

// Scanner handles mDNS server discovery
type Scanner struct {
	// Timeout is the maximum time to wait for server discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForServers discovers all echoline servers on the local network
// Returns a list of discovered services or an error
func (s *Scanner) ScanForServers() ([]*Service, error) {
	return s.ScanForServersWithContext(context.Background())
}

// ScanForServersWithContext discovers servers with a custom context
func (s *Scanner) ScanForServersWithContext(ctx context.Context) ([]*Service, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	services := make([]*Service, 0)
	collected := make(chan struct{})

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries in a goroutine
	go func() {
		defer close(collected)
		for entry := range entries {
			service := s.parseServiceEntry(entry)
			if service != nil {
				services = append(services, service)
			}
		}
	}()

	// Start browsing for echoline services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for the resolver to close the entry channel (timeout or cancellation)
	<-collected

	return services, nil
}

// WaitForServer waits for a specific server by instance name
// Returns the service or an error if not found within timeout
func (s *Scanner) WaitForServer(instance string) (*Service, error) {
	return s.WaitForServerWithContext(context.Background(), instance)
}

// WaitForServerWithContext waits for a specific server with a custom context
func (s *Scanner) WaitForServerWithContext(ctx context.Context, instance string) (*Service, error) {
	// Create a context with timeout
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	// Channel to receive service entries
	entries := make(chan *zeroconf.ServiceEntry)
	serviceChan := make(chan *Service, 1)

	// Start the resolver
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Browse for services in a goroutine
	go func() {
		for entry := range entries {
			service := s.parseServiceEntry(entry)
			if service != nil && service.Instance == instance {
				serviceChan <- service
				cancel() // Found the server, cancel context
				return
			}
		}
	}()

	// Start browsing for echoline services
	err = resolver.Browse(ctx, ServiceType, ServiceDomain, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	// Wait for server or timeout
	select {
	case service := <-serviceChan:
		return service, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("server %q not found within timeout", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Service
// Returns nil if the entry is unusable (no instance name or no address)
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Service {
	if entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	// Get port (default if not specified)
	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			// Key without value
			metadata[parts[0]] = ""
		}
	}

	return &Service{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForServers is a convenience function to scan for servers with a custom timeout
func ScanForServers(timeout time.Duration) ([]*Service, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForServers()
}

// FindServer searches for a specific server by instance name with default timeout
func FindServer(instance string) (*Service, error) {
	scanner := NewScanner()
	return scanner.WaitForServer(instance)
}
