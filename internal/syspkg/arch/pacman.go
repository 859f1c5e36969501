package arch

import (
	"context"
	"fmt"
	"strings"

	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// PacmanProvider queries the pacman database on Arch-based hosts
type PacmanProvider struct {
	runner helpers.CommandRunner
}

// NewPacmanProvider creates a new pacman provider
func NewPacmanProvider(runner helpers.CommandRunner) *PacmanProvider {
	return &PacmanProvider{runner: runner}
}

func (p *PacmanProvider) Name() string {
	return "pacman"
}

// Available reports whether pacman exists on this host
func (p *PacmanProvider) Available() bool {
	return p.runner.CommandExists("pacman")
}

// IsInstalled checks if a package is installed
func (p *PacmanProvider) IsInstalled(ctx context.Context, pkgName string) (bool, error) {
	_, err := p.runner.RunCommand(ctx, "pacman", "-Qi", pkgName)
	if err != nil {
		return false, nil // pacman -Qi exits non-zero for unknown packages
	}
	return true, nil
}

// GetInfo retrieves package information
func (p *PacmanProvider) GetInfo(ctx context.Context, pkgName string) (*syspkg.PackageInfo, error) {
	output, err := p.runner.RunCommand(ctx, "pacman", "-Qi", pkgName)
	if err != nil {
		return nil, fmt.Errorf("pacman query failed: %w", err)
	}

	info := &syspkg.PackageInfo{Name: pkgName}
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Version") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				info.Version = strings.TrimSpace(parts[1])
			}
		}
	}

	return info, nil
}

// Count returns the number of installed pacman packages
func (p *PacmanProvider) Count(ctx context.Context) (int, error) {
	output, err := p.runner.RunCommand(ctx, "pacman", "-Q")
	if err != nil {
		return 0, fmt.Errorf("pacman query failed: %w", err)
	}
	return countLines(output), nil
}

func countLines(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
