package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Service represents a discovered echoline server on the network
type Service struct {
	// Instance is the mDNS instance name (e.g., "echoline on workshop")
	Instance string

	// Hostname is the mDNS hostname (e.g., "workshop.local.")
	Hostname string

	// IP is the IPv4 address when available, otherwise IPv6
	IP string

	// Port is the TCP echo port (typically 5432)
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "txtvers=1", "stop=STOP"
	Metadata map[string]string

	// DiscoveredAt is when the service was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the service
func (s *Service) String() string {
	return fmt.Sprintf("%s at %s:%d", s.Instance, s.IP, s.Port)
}

// Addr returns the dialable address for the service
func (s *Service) Addr() string {
	return net.JoinHostPort(s.IP, strconv.Itoa(s.Port))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Service) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
