package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/db"
	"github.com/quantmind-br/zpkg/internal/fsops"
)

// Uninstall removes exactly the files the database records for the
// named package, then drops its record. Files already missing from
// disk are warnings, not failures.
func (e *Engine) Uninstall(ctx context.Context, name string) (*Result, error) {
	if err := e.db.Lock(); err != nil {
		return nil, err
	}
	defer e.db.Unlock()

	return e.uninstallLocked(ctx, name)
}

// uninstallLocked does the removal work. The caller must hold the
// database lock.
func (e *Engine) uninstallLocked(ctx context.Context, name string) (*Result, error) {
	rec, ok := e.db.Get(name)
	if !ok {
		return nil, &core.UninstallError{Package: name, NotInstalled: true}
	}

	removed := 0
	for _, path := range rec.OwnedFiles {
		err := e.fs.Remove(path)
		switch {
		case err == nil:
			removed++
		case os.IsNotExist(err):
			e.log.Warn().
				Str("package", name).
				Str("path", path).
				Msg("owned file already missing")
		default:
			e.log.Error().
				Str("operation", "uninstall").
				Str("package", name).
				Str("outcome", "partial").
				Str("path", path).
				Err(err).
				Msg("could not remove owned file")
			return nil, &core.UninstallError{
				Package: name,
				Err:     fmt.Errorf("remove %s: %w", path, err),
			}
		}

		if e.Progress != nil {
			e.Progress(removed, len(rec.OwnedFiles))
		}
	}

	// sweep parent directories that our files left empty; directories
	// holding anything else survive
	prefix := rec.InstallPrefix
	if prefix == "" {
		prefix = "/"
	}
	for _, path := range rec.OwnedFiles {
		if err := fsops.PruneEmptyDirs(e.fs, filepath.Dir(path), prefix); err != nil {
			e.log.Warn().Err(err).Str("path", path).Msg("directory cleanup incomplete")
		}
	}

	if err := e.db.Commit(db.Remove(name)); err != nil {
		return nil, err
	}

	if touchesApplications(rec.OwnedFiles) {
		e.refreshDesktopDatabase(ctx, prefix)
	}

	e.log.Info().
		Str("operation", "uninstall").
		Str("package", name).
		Str("version", rec.Version).
		Str("outcome", "committed").
		Int("files", removed).
		Msg("package uninstalled")

	return &Result{Record: &rec}, nil
}
