package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/db"
	"github.com/quantmind-br/zpkg/internal/fsops"
	"github.com/quantmind-br/zpkg/internal/transaction"
	"github.com/quantmind-br/zpkg/internal/validate"
)

// Install runs the full install pipeline for one archive: read,
// validate, resolve dependencies, stage, write, commit. No file under
// the prefix is touched until every earlier phase has passed, and a
// write failure rolls back everything written so far.
func (e *Engine) Install(ctx context.Context, archivePath string, opts Options) (*Result, error) {
	stageDir, err := afero.TempDir(e.fs, "", "zpkg-stage-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer e.fs.RemoveAll(stageDir)

	pkg, err := e.reader.Read(archivePath, stageDir)
	if err != nil {
		return nil, err
	}

	results := e.validator.ValidateAll(pkg.Entries)
	if fatal := validate.FirstFatal(results); fatal != nil {
		e.log.Error().
			Str("operation", "install").
			Str("package", pkg.Manifest.Name).
			Str("outcome", "validation_failed").
			Err(fatal).
			Msg("package content validation failed")
		return nil, fatal
	}

	if err := e.resolver.Resolve(ctx, pkg.Manifest); err != nil {
		return nil, err
	}

	if err := e.db.Lock(); err != nil {
		return nil, err
	}
	defer e.db.Unlock()

	res, err := e.installStaged(ctx, pkg.Manifest, pkg.Entries, opts)
	if err != nil {
		return nil, err
	}

	res.Warnings = collectWarnings(results)
	res.MissingOptional = e.resolver.MissingOptional(ctx, pkg.Manifest)
	return res, nil
}

// installStaged performs the stage-check, write and commit phases.
// The caller must hold the database lock.
func (e *Engine) installStaged(ctx context.Context, manifest *core.Manifest, entries []core.FileEntry, opts Options) (*Result, error) {
	name := manifest.Name
	prefix := prefixFor(manifest, opts)

	if rec, ok := e.db.Get(name); ok {
		return nil, &core.InstallError{
			Package: name,
			Err:     fmt.Errorf("version %s is already installed, use reinstall", rec.Version),
		}
	}

	// Conflict check runs over the complete target set before any
	// write, so a conflicting package leaves the prefix untouched
	targets := make(map[string]core.FileEntry, len(entries))
	var owned []string
	for _, entry := range entries {
		if entry.Kind == core.EntryDirectory {
			continue
		}
		target := targetPath(prefix, entry.RelativePath)
		if owner, ok := e.db.OwnerOf(target); ok && owner != name {
			e.log.Error().
				Str("operation", "install").
				Str("package", name).
				Str("outcome", "conflict").
				Str("path", target).
				Str("owner", owner).
				Msg("target path owned by another package")
			return nil, &core.ConflictError{Path: target, Owner: owner}
		}
		targets[target] = entry
		owned = append(owned, target)
	}

	tx := transaction.NewManager(e.log)
	var cleaned, orphaned []string

	fail := func(target string, err error) (*Result, error) {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.log.Error().Err(rbErr).Str("package", name).Msg("rollback incomplete")
		}
		e.log.Error().
			Str("operation", "install").
			Str("package", name).
			Str("outcome", "rolled_back").
			Int("cleaned", len(cleaned)).
			Int("orphaned", len(orphaned)).
			Msg("install failed during write phase")
		return nil, &core.InstallError{
			Package:  name,
			Cleaned:  cleaned,
			Orphaned: orphaned,
			Err:      fmt.Errorf("write %s: %w", target, err),
		}
	}

	done := 0
	for _, target := range owned {
		entry := targets[target]

		if err := e.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fail(target, err)
		}

		// the undo goes on the list before the write, so a payload
		// that fails partway still has its partial target removed
		t := target
		tx.Add("write "+t, func() error {
			if err := e.fs.Remove(t); err != nil && !os.IsNotExist(err) {
				orphaned = append(orphaned, t)
				return err
			}
			cleaned = append(cleaned, t)
			return nil
		})

		if err := e.writeEntry(entry, target); err != nil {
			return fail(target, err)
		}

		done++
		if e.Progress != nil {
			e.Progress(done, len(owned))
		}
	}

	record := core.InstalledPackage{
		Name:          name,
		Version:       manifest.Version,
		Architecture:  manifest.Architecture,
		InstallPrefix: prefix,
		OwnedFiles:    owned,
		InstalledAt:   time.Now().UTC(),
	}

	if err := e.db.Commit(db.Put(record)); err != nil {
		return fail(e.db.Path(), err)
	}
	tx.Commit()

	if touchesApplications(owned) {
		e.refreshDesktopDatabase(ctx, prefix)
	}

	e.log.Info().
		Str("operation", "install").
		Str("package", name).
		Str("version", manifest.Version).
		Str("prefix", prefix).
		Str("outcome", "committed").
		Int("files", len(owned)).
		Msg("package installed")

	return &Result{Manifest: manifest, Record: &record}, nil
}

// writeEntry materializes one staged entry at its target path
func (e *Engine) writeEntry(entry core.FileEntry, target string) error {
	switch entry.Kind {
	case core.EntrySymlink:
		return e.writeSymlink(entry, target)
	default:
		return e.writeRegular(entry, target)
	}
}

func (e *Engine) writeRegular(entry core.FileEntry, target string) error {
	mode := os.FileMode(entry.Mode & 0777)
	if mode == 0 {
		mode = 0644
	}
	return fsops.CopyFile(e.fs, entry.StagedPath, target, mode)
}

func (e *Engine) writeSymlink(entry core.FileEntry, target string) error {
	linker, ok := e.fs.(afero.Linker)
	if !ok {
		e.log.Warn().
			Str("path", target).
			Str("link_target", entry.LinkTarget).
			Msg("filesystem does not support symlinks, writing link target as file")
		return afero.WriteFile(e.fs, target, []byte(entry.LinkTarget), 0644)
	}

	// replace a stale link left behind by a previous failed run
	e.fs.Remove(target)
	return linker.SymlinkIfPossible(entry.LinkTarget, target)
}
