package core

import (
	"fmt"
	"strings"
)

// ArchiveError reports a malformed or unreadable package archive
type ArchiveError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("archive %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("archive %s: %s", e.Path, e.Reason)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// ValidationError reports malformed content inside a package entry
type ValidationError struct {
	Kind   EntryKind
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case EntryELF:
		return fmt.Sprintf("malformed ELF binary %s: %s", e.Path, e.Reason)
	case EntryDesktop:
		return fmt.Sprintf("malformed desktop entry %s: %s", e.Path, e.Reason)
	case EntryIcon:
		return fmt.Sprintf("malformed icon %s: %s", e.Path, e.Reason)
	default:
		return fmt.Sprintf("invalid entry %s: %s", e.Path, e.Reason)
	}
}

// DependencyError lists every unsatisfied dependency so callers can
// report all of them at once
type DependencyError struct {
	Missing []Dependency
}

func (e *DependencyError) Error() string {
	names := make([]string, len(e.Missing))
	for i, d := range e.Missing {
		names[i] = d.String()
	}
	return fmt.Sprintf("unsatisfied dependencies: %s", strings.Join(names, ", "))
}

// ConflictError reports a target path already owned by another package
type ConflictError struct {
	Path  string
	Owner string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("file %s is owned by package %s", e.Path, e.Owner)
}

// DatabaseErrorKind distinguishes database failure modes
type DatabaseErrorKind string

const (
	DatabaseCorrupt       DatabaseErrorKind = "corrupt"
	DatabasePersistFailed DatabaseErrorKind = "persist_failed"
	DatabaseLocked        DatabaseErrorKind = "locked"
)

// DatabaseError reports a package database failure
type DatabaseError struct {
	Kind DatabaseErrorKind
	Path string
	Err  error
}

func (e *DatabaseError) Error() string {
	switch e.Kind {
	case DatabaseCorrupt:
		return fmt.Sprintf("package database %s is corrupt: %v", e.Path, e.Err)
	case DatabasePersistFailed:
		return fmt.Sprintf("failed to persist package database %s: %v", e.Path, e.Err)
	case DatabaseLocked:
		return fmt.Sprintf("package database %s is locked by another process", e.Path)
	default:
		return fmt.Sprintf("package database %s: %v", e.Path, e.Err)
	}
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// InstallError reports a failure during the install write phase.
// Cleaned and Orphaned state which rolled-back paths were removed and
// which could not be.
type InstallError struct {
	Package  string
	Cleaned  []string
	Orphaned []string
	Err      error
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("install %s failed: %v", e.Package, e.Err)
	if len(e.Orphaned) > 0 {
		msg += fmt.Sprintf(" (%d written files could not be removed)", len(e.Orphaned))
	}
	return msg
}

func (e *InstallError) Unwrap() error { return e.Err }

// UninstallError reports a failed uninstall
type UninstallError struct {
	Package      string
	NotInstalled bool
	Err          error
}

func (e *UninstallError) Error() string {
	if e.NotInstalled {
		return fmt.Sprintf("package %s is not installed", e.Package)
	}
	return fmt.Sprintf("uninstall %s failed: %v", e.Package, e.Err)
}

func (e *UninstallError) Unwrap() error { return e.Err }

// ReinstallError reports a failed reinstall. InstallFailedAfterRemoval
// means the old version was removed and the new one did not go in: the
// package is now absent, not reverted.
type ReinstallError struct {
	Package                   string
	InstallFailedAfterRemoval bool
	Err                       error
}

func (e *ReinstallError) Error() string {
	if e.InstallFailedAfterRemoval {
		return fmt.Sprintf("reinstall %s: install failed after removal, package is now uninstalled: %v", e.Package, e.Err)
	}
	return fmt.Sprintf("reinstall %s failed: %v", e.Package, e.Err)
}

func (e *ReinstallError) Unwrap() error { return e.Err }

// PermissionError reports missing filesystem rights for a prefix
type PermissionError struct {
	Prefix string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("installing to %s requires root privileges, re-run with sudo or doas", e.Prefix)
}
