package engine

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/archive"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/db"
	"github.com/quantmind-br/zpkg/internal/deps"
	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/validate"
)

// Options carries per-operation settings
type Options struct {
	// Prefix overrides the manifest's install prefix when non-empty
	Prefix string
}

// Result reports the outcome of a completed operation
type Result struct {
	Manifest        *core.Manifest
	Record          *core.InstalledPackage
	Warnings        []core.ValidationResult
	MissingOptional []core.Dependency
}

// Engine orchestrates install, uninstall and reinstall as atomic,
// rollback-capable operations. One operation runs to completion
// (commit or rollback) under the exclusive database lock before
// another may start; there is no cancellation once file writes begin.
type Engine struct {
	fs        afero.Fs
	db        *db.DB
	reader    *archive.Reader
	validator *validate.Validator
	resolver  *deps.Resolver
	runner    helpers.CommandRunner
	log       *zerolog.Logger

	// Progress, when set, is called after each written file
	Progress func(done, total int)
}

// New creates a transaction engine over the given collaborators
func New(fs afero.Fs, database *db.DB, resolver *deps.Resolver, runner helpers.CommandRunner, log *zerolog.Logger) *Engine {
	return &Engine{
		fs:        fs,
		db:        database,
		reader:    archive.NewReader(fs, log),
		validator: validate.New(fs, log),
		resolver:  resolver,
		runner:    runner,
		log:       log,
	}
}

// DB exposes the package database for pure read queries (list, info)
func (e *Engine) DB() *db.DB {
	return e.db
}

// targetPath maps an archive-relative path onto the install prefix.
// Package trees are rooted at usr/ by convention; that segment is
// replaced by the prefix. Anything else stays under the prefix too so
// every owned file remains inside one removable subtree.
func targetPath(prefix, rel string) string {
	rel = filepath.Clean(rel)
	if rel == "usr" {
		return filepath.Clean(prefix)
	}
	if after, ok := strings.CutPrefix(rel, "usr/"); ok {
		rel = after
	}
	return filepath.Join(prefix, rel)
}

// prefixFor picks the effective install prefix for an operation
func prefixFor(manifest *core.Manifest, opts Options) string {
	if opts.Prefix != "" {
		return filepath.Clean(opts.Prefix)
	}
	if manifest.InstallPrefix != "" {
		return filepath.Clean(manifest.InstallPrefix)
	}
	return archive.DefaultPrefix
}

// touchesApplications reports whether any owned path lands under the
// prefix's share/applications directory
func touchesApplications(paths []string) bool {
	for _, p := range paths {
		if strings.Contains(p, "share/applications/") {
			return true
		}
	}
	return false
}

// refreshDesktopDatabase runs update-desktop-database best-effort; a
// missing tool or failure never fails the transaction
func (e *Engine) refreshDesktopDatabase(ctx context.Context, prefix string) {
	if e.runner == nil || !e.runner.CommandExists("update-desktop-database") {
		return
	}

	appsDir := filepath.Join(prefix, "share", "applications")
	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := e.runner.RunCommand(cctx, "update-desktop-database", appsDir); err != nil {
		e.log.Warn().Err(err).Str("dir", appsDir).Msg("desktop database update failed (non-fatal)")
		return
	}
	e.log.Debug().Str("dir", appsDir).Msg("desktop database updated")
}

// collectWarnings extracts the non-fatal invalid results
func collectWarnings(results []core.ValidationResult) []core.ValidationResult {
	var warnings []core.ValidationResult
	for _, r := range results {
		if r.Status == core.StatusInvalid && !r.Fatal {
			warnings = append(warnings, r)
		}
	}
	return warnings
}
