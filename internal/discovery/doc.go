// Package discovery provides mDNS-based discovery for echoline servers.
//
// This package implements multicast DNS (mDNS) service discovery so clients
// can automatically locate echo servers on the local network, and so servers
// can advertise themselves. Echoline servers advertise using the
// "_echoline._tcp" service type.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements from echoline servers
//  3. Collects service information (instance name, IP, port, TXT metadata)
//  4. Returns a list of discovered servers after the timeout period
//
// # Usage Example
//
//	// Discover servers with 5-second timeout
//	services, err := discovery.ScanForServers(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered servers
//	for _, svc := range services {
//	    fmt.Printf("Found: %s at %s\n", svc.Instance, svc.Addr())
//	}
//
// # Advertising
//
// A server announces itself with Announce and withdraws the advertisement
// on shutdown:
//
//	announcer, err := discovery.Announce("", 5432)
//	if err != nil {
//	    log.Printf("announce failed: %v", err)
//	}
//	defer announcer.Shutdown()
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
