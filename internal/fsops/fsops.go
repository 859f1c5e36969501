package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// EnsureDir ensures a directory exists with the given permissions
func EnsureDir(fs afero.Fs, path string, perm os.FileMode) error {
	if err := fs.MkdirAll(path, perm); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	return nil
}

// Exists checks if a path exists
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// CheckWritable checks if a directory is writable by creating and
// removing a probe file
func CheckWritable(fs afero.Fs, path string) error {
	probe := filepath.Join(path, ".write_test")
	f, err := fs.Create(probe)
	if err != nil {
		return fmt.Errorf("path not writable: %w", err)
	}
	f.Close()
	fs.Remove(probe)
	return nil
}

// CopyFile streams a file from src to dst with the given mode. The
// payload is never buffered whole.
func CopyFile(fs afero.Fs, src, dst string, mode os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy payload: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// the create mode is subject to umask; fix it up explicitly
	return fs.Chmod(dst, mode)
}

// PruneEmptyDirs removes path if it is an empty directory, then walks
// up toward stopDir pruning parents that became empty. Directories
// holding foreign files are left alone. stopDir itself is never
// removed.
func PruneEmptyDirs(fs afero.Fs, path, stopDir string) error {
	stopDir = filepath.Clean(stopDir)

	for dir := filepath.Clean(path); dir != stopDir && strings.HasPrefix(dir, stopDir+string(filepath.Separator)); dir = filepath.Dir(dir) {
		info, err := fs.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil
		}

		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			return fmt.Errorf("read dir %s: %w", dir, err)
		}
		if len(entries) > 0 {
			return nil
		}

		if err := fs.Remove(dir); err != nil {
			return fmt.Errorf("remove dir %s: %w", dir, err)
		}
	}

	return nil
}
