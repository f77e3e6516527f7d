package config

import (
	"strconv"
	"time"
)

// DefaultPort is the TCP port the echo server listens on when no port is
// given on the command line or in the configuration file.
const DefaultPort = 5432

// Registry represents the entire user configuration file.
// This stores server defaults, remembered servers, and client preferences.
type Registry struct {
	Version     int                     `yaml:"version"`
	Server      *ServerConfig           `yaml:"server,omitempty"`
	Servers     map[string]*KnownServer `yaml:"servers,omitempty"` // Keyed by mDNS instance name
	Preferences *Preferences            `yaml:"preferences,omitempty"`
}

// ServerConfig holds defaults for the echo server. Command-line flags
// override these values.
type ServerConfig struct {
	Host        string `yaml:"host,omitempty"`         // Listen address (empty = all interfaces)
	Port        int    `yaml:"port"`                   // TCP listen port
	GracePeriod int    `yaml:"grace_period,omitempty"` // Shutdown drain timeout in seconds
	Announce    bool   `yaml:"announce"`               // Register the service via mDNS
	Instance    string `yaml:"instance,omitempty"`     // mDNS instance name (empty = hostname-derived)
	WSPort      int    `yaml:"ws_port,omitempty"`      // WebSocket bridge port (0 = disabled)
	LogLevel    string `yaml:"log_level,omitempty"`    // Overrides ECHOLINE_LOG_LEVEL when set
}

// KnownServer represents client-side metadata for a server seen via discovery
// or connected to explicitly. This is keyed by the server's mDNS instance name
// in the Registry.
type KnownServer struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	LastAddr string    `yaml:"last_addr,omitempty"` // Last known IP address
	LastPort int       `yaml:"last_port,omitempty"` // Last known TCP port
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences for the client.
type Preferences struct {
	AutoDiscover    bool   `yaml:"auto_discover"`            // Browse mDNS when no server address is given
	DiscoverTimeout int    `yaml:"discover_timeout"`         // mDNS discovery timeout in seconds
	DefaultServer   string `yaml:"default_server,omitempty"` // Instance name or host:port used when no target is given
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Server: &ServerConfig{
			Port:        DefaultPort,
			GracePeriod: 5,
		},
		Servers: make(map[string]*KnownServer),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 5,
		},
	}
}

// GetServer retrieves remembered server metadata by instance name.
// Returns nil if the server doesn't exist in the registry.
func (r *Registry) GetServer(instance string) *KnownServer {
	return r.Servers[instance]
}

// EnsureServer ensures a server entry exists in the registry.
// If the server doesn't exist, creates a new entry with default values.
// Returns the entry (existing or newly created).
func (r *Registry) EnsureServer(instance string) *KnownServer {
	if r.Servers == nil {
		r.Servers = make(map[string]*KnownServer)
	}

	if srv, exists := r.Servers[instance]; exists {
		return srv
	}

	srv := &KnownServer{}
	r.Servers[instance] = srv
	return srv
}

// UpdateServerLastSeen updates the last seen timestamp, address, and port
// for a remembered server.
func (r *Registry) UpdateServerLastSeen(instance, addr string, port int) {
	srv := r.EnsureServer(instance)
	srv.LastSeen = time.Now()
	srv.LastAddr = addr
	srv.LastPort = port
}

// SetServerNickname sets a user-friendly nickname for a remembered server.
func (r *Registry) SetServerNickname(instance, nickname string) {
	srv := r.EnsureServer(instance)
	srv.Nickname = nickname
}

// ResolveServer resolves a name to a host and port. The name may be an
// instance name or nickname from the registry; ok reports whether the name
// was remembered with an address, so callers can fall back to live
// discovery or treat the name as a bare host.
func (r *Registry) ResolveServer(name string) (host string, port int, ok bool) {
	if srv, found := r.Servers[name]; found && srv.LastAddr != "" {
		return srv.LastAddr, srv.LastPort, true
	}
	for _, srv := range r.Servers {
		if srv.Nickname == name && srv.LastAddr != "" {
			return srv.LastAddr, srv.LastPort, true
		}
	}
	return "", 0, false
}

// PortOrDefault parses a port argument, falling back to DefaultPort when the
// argument is empty or not an integer. Parseable but unusable values (for
// example out-of-range ports) are returned unchanged so the listen call can
// report them.
func PortOrDefault(arg string) int {
	if arg == "" {
		return DefaultPort
	}
	port, err := strconv.Atoi(arg)
	if err != nil {
		return DefaultPort
	}
	return port
}
