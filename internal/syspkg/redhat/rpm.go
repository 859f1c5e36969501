package redhat

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// RpmProvider queries the rpm database on RPM-based hosts
type RpmProvider struct {
	runner helpers.CommandRunner
}

// NewRpmProvider creates a new rpm provider
func NewRpmProvider(runner helpers.CommandRunner) *RpmProvider {
	return &RpmProvider{runner: runner}
}

func (p *RpmProvider) Name() string {
	return "rpm"
}

// Available reports whether rpm exists on this host
func (p *RpmProvider) Available() bool {
	return p.runner.CommandExists("rpm")
}

// IsInstalled checks if a package is installed
func (p *RpmProvider) IsInstalled(ctx context.Context, pkgName string) (bool, error) {
	_, err := p.runner.RunCommand(ctx, "rpm", "-q", pkgName)
	if err != nil {
		return false, nil // rpm -q exits non-zero for unknown packages
	}
	return true, nil
}

// GetInfo retrieves package information
func (p *RpmProvider) GetInfo(ctx context.Context, pkgName string) (*syspkg.PackageInfo, error) {
	output, err := p.runner.RunCommand(ctx, "rpm", "-q", "--qf", "%{VERSION}-%{RELEASE}", pkgName)
	if err != nil {
		return nil, fmt.Errorf("rpm query failed: %w", err)
	}

	return &syspkg.PackageInfo{
		Name:    pkgName,
		Version: strings.TrimSpace(output),
	}, nil
}

// Count returns the number of installed rpm packages
func (p *RpmProvider) Count(ctx context.Context) (int, error) {
	output, err := p.runner.RunCommand(ctx, "rpm", "-qa")
	if err != nil {
		return 0, fmt.Errorf("rpm query failed: %w", err)
	}

	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count, nil
}
