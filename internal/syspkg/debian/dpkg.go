package debian

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// DpkgProvider queries the dpkg database on Debian-based hosts
type DpkgProvider struct {
	runner helpers.CommandRunner
}

// NewDpkgProvider creates a new dpkg provider
func NewDpkgProvider(runner helpers.CommandRunner) *DpkgProvider {
	return &DpkgProvider{runner: runner}
}

func (p *DpkgProvider) Name() string {
	return "dpkg"
}

// Available reports whether dpkg exists on this host
func (p *DpkgProvider) Available() bool {
	return p.runner.CommandExists("dpkg-query")
}

// IsInstalled checks if a package is installed
func (p *DpkgProvider) IsInstalled(ctx context.Context, pkgName string) (bool, error) {
	output, err := p.runner.RunCommand(ctx, "dpkg-query", "-W", "-f", "${Status}", pkgName)
	if err != nil {
		return false, nil // dpkg-query exits non-zero for unknown packages
	}
	return strings.Contains(output, "install ok installed"), nil
}

// GetInfo retrieves package information
func (p *DpkgProvider) GetInfo(ctx context.Context, pkgName string) (*syspkg.PackageInfo, error) {
	output, err := p.runner.RunCommand(ctx, "dpkg-query", "-W", "-f", "${Version}", pkgName)
	if err != nil {
		return nil, fmt.Errorf("dpkg query failed: %w", err)
	}

	return &syspkg.PackageInfo{
		Name:    pkgName,
		Version: strings.TrimSpace(output),
	}, nil
}

// Count returns the number of installed dpkg packages
func (p *DpkgProvider) Count(ctx context.Context) (int, error) {
	output, err := p.runner.RunCommand(ctx, "dpkg-query", "-W", "-f", "${binary:Package}\n")
	if err != nil {
		return 0, fmt.Errorf("dpkg query failed: %w", err)
	}

	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count, nil
}
