package syspkg

import (
	"context"
)

// PackageInfo contains basic native package metadata
type PackageInfo struct {
	Name    string
	Version string
}

// Provider is a read-only view of the host's native package manager,
// used to decide whether a declared dependency is already satisfied
// outside our own database
type Provider interface {
	// Name returns the provider name (e.g., "pacman", "dpkg", "rpm")
	Name() string

	// Available reports whether the native package manager exists on
	// this host
	Available() bool

	// IsInstalled checks if a native package is installed
	IsInstalled(ctx context.Context, pkgName string) (bool, error)

	// GetInfo retrieves native package information
	GetInfo(ctx context.Context, pkgName string) (*PackageInfo, error)

	// Count returns the number of installed native packages
	Count(ctx context.Context) (int, error)
}

// Detect returns every provider whose package manager is present on
// this host, in probe order
func Detect(candidates ...Provider) []Provider {
	var found []Provider
	for _, p := range candidates {
		if p.Available() {
			found = append(found, p)
		}
	}
	return found
}
