// Package config provides user configuration management for the echoline project.
//
// This package manages a YAML-based configuration file that stores server
// defaults (port, grace period, mDNS announcement), metadata for remembered
// servers, and client preferences. The configuration follows OS-specific
// conventions for storage location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/echoline/config.yaml or $HOME/.config/echoline/config.yaml
//   - macOS: $HOME/.config/echoline/config.yaml
//   - Windows: %LOCALAPPDATA%\echoline\config.yaml
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Record a server seen via discovery
//	registry.UpdateServerLastSeen("echoline on workshop", "192.168.1.100", 5432)
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config
