package helpers

import (
	"path/filepath"
	"strings"
)

// PackageNameFromArchive derives the package name from an archive
// filename. Arch package filenames follow
// name-pkgver-pkgrel-arch.pkg.tar.zst, where name itself may contain
// dashes, so the last three dash-separated fields are stripped.
func PackageNameFromArchive(archivePath string) string {
	base := filepath.Base(archivePath)

	for _, suffix := range []string{".pkg.tar.zst", ".pkg.tar.xz", ".pkg.tar"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}

	parts := strings.Split(base, "-")
	if len(parts) > 3 {
		return strings.Join(parts[:len(parts)-3], "-")
	}
	return parts[0]
}

// VersionFromArchive derives "pkgver-pkgrel" from an archive filename,
// or "" when the filename does not follow the convention.
func VersionFromArchive(archivePath string) string {
	base := filepath.Base(archivePath)

	for _, suffix := range []string{".pkg.tar.zst", ".pkg.tar.xz", ".pkg.tar"} {
		if strings.HasSuffix(base, suffix) {
			base = strings.TrimSuffix(base, suffix)
			break
		}
	}

	parts := strings.Split(base, "-")
	if len(parts) > 3 {
		return parts[len(parts)-3] + "-" + parts[len(parts)-2]
	}
	return ""
}
