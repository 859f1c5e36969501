package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"

	"github.com/quantmind-br/zpkg/internal/core"
)

// DefaultLockTimeout bounds how long a second invocation waits for the
// database lock before failing fast
const DefaultLockTimeout = 10 * time.Second

const lockPollInterval = 100 * time.Millisecond

// Locker serializes concurrent invocations against one database
type Locker interface {
	Lock() error
	Unlock()
}

// defaultLocker picks an advisory flock on real filesystems and a
// no-op on memory-backed ones, where cross-process locks have no
// meaning
func defaultLocker(fs afero.Fs, dbPath string) Locker {
	if _, ok := fs.(*afero.OsFs); ok {
		return NewFlockLocker(dbPath+".lock", DefaultLockTimeout)
	}
	return NopLocker{}
}

// FlockLocker holds an exclusive advisory lock on a lock file next to
// the database for the duration of a transaction
type FlockLocker struct {
	path    string
	timeout time.Duration
	file    *os.File
}

// NewFlockLocker creates a flock-based locker with a bounded wait
func NewFlockLocker(path string, timeout time.Duration) *FlockLocker {
	return &FlockLocker{path: path, timeout: timeout}
}

// Lock acquires the exclusive lock, polling a non-blocking flock until
// the timeout elapses
func (l *FlockLocker) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return &core.DatabaseError{Kind: core.DatabasePersistFailed, Path: l.path, Err: fmt.Errorf("create lock directory: %w", err)}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return &core.DatabaseError{Kind: core.DatabasePersistFailed, Path: l.path, Err: fmt.Errorf("open lock file: %w", err)}
	}

	deadline := time.Now().Add(l.timeout)
	for {
		err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			l.file = f
			return nil
		}
		if err != unix.EWOULDBLOCK && err != unix.EAGAIN {
			f.Close()
			return &core.DatabaseError{Kind: core.DatabasePersistFailed, Path: l.path, Err: fmt.Errorf("flock: %w", err)}
		}
		if time.Now().After(deadline) {
			f.Close()
			return &core.DatabaseError{Kind: core.DatabaseLocked, Path: l.path}
		}
		time.Sleep(lockPollInterval)
	}
}

// Unlock releases the lock and closes the lock file
func (l *FlockLocker) Unlock() {
	if l.file == nil {
		return
	}
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
	l.file = nil
}

// NopLocker is used on in-memory filesystems
type NopLocker struct{}

func (NopLocker) Lock() error { return nil }
func (NopLocker) Unlock()     {}
