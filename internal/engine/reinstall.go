package engine

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/validate"
)

// Reinstall replaces an installed package with the contents of the
// given archive: the old files come out, the new ones go in, under a
// single database lock. The archive is read, validated and resolved
// before anything is removed, so most failures leave the old install
// untouched. If the install phase still fails after removal the
// package ends up absent, and the error says so.
func (e *Engine) Reinstall(ctx context.Context, archivePath string, opts Options) (*Result, error) {
	stageDir, err := afero.TempDir(e.fs, "", "zpkg-stage-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer e.fs.RemoveAll(stageDir)

	pkg, err := e.reader.Read(archivePath, stageDir)
	if err != nil {
		return nil, &core.ReinstallError{Package: archivePath, Err: err}
	}
	name := pkg.Manifest.Name

	results := e.validator.ValidateAll(pkg.Entries)
	if fatal := validate.FirstFatal(results); fatal != nil {
		return nil, &core.ReinstallError{Package: name, Err: fatal}
	}

	if err := e.resolver.Resolve(ctx, pkg.Manifest); err != nil {
		return nil, &core.ReinstallError{Package: name, Err: err}
	}

	if err := e.db.Lock(); err != nil {
		return nil, err
	}
	defer e.db.Unlock()

	if _, ok := e.db.Get(name); !ok {
		return nil, &core.ReinstallError{
			Package: name,
			Err:     &core.UninstallError{Package: name, NotInstalled: true},
		}
	}

	if _, err := e.uninstallLocked(ctx, name); err != nil {
		return nil, &core.ReinstallError{Package: name, Err: err}
	}

	res, err := e.installStaged(ctx, pkg.Manifest, pkg.Entries, opts)
	if err != nil {
		// the old version is gone and the new one did not go in
		e.log.Error().
			Str("operation", "reinstall").
			Str("package", name).
			Str("outcome", "removed_not_replaced").
			Err(err).
			Msg("install failed after removal")
		return nil, &core.ReinstallError{
			Package:                   name,
			InstallFailedAfterRemoval: true,
			Err:                       err,
		}
	}

	res.Warnings = collectWarnings(results)
	res.MissingOptional = e.resolver.MissingOptional(ctx, pkg.Manifest)

	e.log.Info().
		Str("operation", "reinstall").
		Str("package", name).
		Str("version", pkg.Manifest.Version).
		Str("outcome", "committed").
		Msg("package reinstalled")

	return res, nil
}
