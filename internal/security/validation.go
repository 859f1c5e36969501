package security

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ValidPackageNameRegex allows alphanumeric, dash, underscore, plus and dot
	ValidPackageNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._+-]+$`)

	// ValidVersionRegex allows pacman version formats (epoch:ver-rel)
	ValidVersionRegex = regexp.MustCompile(`^[a-zA-Z0-9._+:~-]+$`)
)

// ValidatePackageName validates a package name for safety before it is
// used in filesystem paths or database keys
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}

	if len(name) > 255 {
		return fmt.Errorf("package name too long (max 255 characters)")
	}

	if !ValidPackageNameRegex.MatchString(name) {
		return fmt.Errorf("invalid package name %q: must contain only alphanumeric, dash, underscore, plus, or dot characters", name)
	}

	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		return fmt.Errorf("package name %q cannot start with %q", name, name[:1])
	}

	return nil
}

// ValidateVersion validates a version string
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}

	if len(version) >= 100 {
		return fmt.Errorf("version string too long (max 100 characters)")
	}

	if strings.Contains(version, "\x00") {
		return fmt.Errorf("version contains null byte")
	}

	if !ValidVersionRegex.MatchString(version) {
		return fmt.Errorf("invalid version format %q", version)
	}

	return nil
}
