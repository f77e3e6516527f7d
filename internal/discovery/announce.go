package discovery

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
)

// DefaultInstance returns the mDNS instance name used when none is configured.
// The name embeds the machine hostname so multiple servers on one network
// remain distinguishable.
func DefaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "echoline"
	}
	return "echoline on " + host
}

// Announcer advertises a running echo server via mDNS.
type Announcer struct {
	// Instance is the final instance name the service was registered under
	Instance string

	server *zeroconf.Server
}

// Announce registers the echo service on the local network so clients can
// find it with ScanForServers. An empty instance name falls back to
// DefaultInstance.
func Announce(instance string, port int) (*Announcer, error) {
	if instance == "" {
		instance = DefaultInstance()
	}

	txt := []string{"txtvers=1", "stop=STOP"}
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	return &Announcer{
		Instance: instance,
		server:   server,
	}, nil
}

// Shutdown withdraws the mDNS advertisement. Safe to call on a nil Announcer.
func (a *Announcer) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}
