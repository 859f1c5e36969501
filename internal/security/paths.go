package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidateExtractPath prevents directory traversal (Zip Slip) when an
// archive member is resolved against a destination directory
func ValidateExtractPath(targetDir, memberPath string) error {
	cleanPath := filepath.Clean(memberPath)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains ..: %s", memberPath)
	}

	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("absolute path not allowed: %s", memberPath)
	}

	destPath := filepath.Join(targetDir, cleanPath)

	cleanDest, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}

	cleanTarget, err := filepath.Abs(destPath)
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	if !strings.HasPrefix(cleanTarget, cleanDest+string(filepath.Separator)) &&
		cleanTarget != cleanDest {
		return fmt.Errorf("path escapes destination directory: %s", memberPath)
	}

	return nil
}

// ValidateSymlink ensures a symlink member does not point outside the
// destination directory
func ValidateSymlink(targetDir, linkPath, linkTarget string) error {
	linkDir := filepath.Dir(linkPath)
	resolvedTarget := filepath.Join(linkDir, linkTarget)

	cleanTarget, err := filepath.Abs(resolvedTarget)
	if err != nil {
		return fmt.Errorf("failed to resolve symlink target: %w", err)
	}

	cleanDest, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("failed to resolve target directory: %w", err)
	}

	if !strings.HasPrefix(cleanTarget, cleanDest+string(filepath.Separator)) &&
		cleanTarget != cleanDest {
		return fmt.Errorf("symlink target escapes destination: %s -> %s", linkPath, linkTarget)
	}

	return nil
}
