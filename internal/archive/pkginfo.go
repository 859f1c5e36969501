package archive

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/security"
)

// DefaultPrefix is used when the .PKGINFO carries no prefix override
const DefaultPrefix = "/usr"

// constraint operators, longest first so ">=" wins over ">"
var constraintOps = []string{">=", "<=", "=", ">", "<"}

// ParsePkginfo parses an Arch .PKGINFO metadata stream into a manifest
func ParsePkginfo(r io.Reader) (*core.Manifest, error) {
	m := &core.Manifest{InstallPrefix: DefaultPrefix}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "pkgname":
			m.Name = value
		case "pkgver":
			m.Version = value
		case "arch":
			m.Architecture = value
		case "pkgdesc":
			m.Description = value
		case "prefix":
			if value != "" {
				m.InstallPrefix = value
			}
		case "depend":
			dep, err := ParseDependency(value)
			if err != nil {
				return nil, fmt.Errorf("bad depend entry %q: %w", value, err)
			}
			m.Dependencies = append(m.Dependencies, dep)
		case "optdepend":
			// optdepend values may carry a ": description" suffix
			spec := value
			if idx := strings.Index(spec, ":"); idx >= 0 {
				spec = strings.TrimSpace(spec[:idx])
			}
			if spec == "" {
				continue
			}
			dep, err := ParseDependency(spec)
			if err != nil {
				return nil, fmt.Errorf("bad optdepend entry %q: %w", value, err)
			}
			dep.Optional = true
			m.Dependencies = append(m.Dependencies, dep)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan .PKGINFO: %w", err)
	}

	if m.Name == "" {
		return nil, fmt.Errorf(".PKGINFO has no pkgname")
	}
	if m.Version == "" {
		return nil, fmt.Errorf(".PKGINFO has no pkgver")
	}
	if err := security.ValidatePackageName(m.Name); err != nil {
		return nil, err
	}
	if err := security.ValidateVersion(m.Version); err != nil {
		return nil, err
	}

	return m, nil
}

// ParseDependency parses a pacman dependency constraint like
// "glibc>=2.38" or a bare package name
func ParseDependency(spec string) (core.Dependency, error) {
	for _, op := range constraintOps {
		idx := strings.Index(spec, op)
		if idx <= 0 {
			continue
		}

		name := spec[:idx]
		version := spec[idx+len(op):]

		if err := security.ValidatePackageName(name); err != nil {
			return core.Dependency{}, err
		}
		if err := security.ValidateVersion(version); err != nil {
			return core.Dependency{}, err
		}

		return core.Dependency{Name: name, Operator: op, Version: version}, nil
	}

	if err := security.ValidatePackageName(spec); err != nil {
		return core.Dependency{}, err
	}
	return core.Dependency{Name: spec}, nil
}
