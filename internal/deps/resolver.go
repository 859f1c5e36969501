package deps

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/db"
	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// Resolver checks declared dependencies against the package database
// and the host's native package managers. It is a pure query and never
// mutates anything.
type Resolver struct {
	db        *db.DB
	providers []syspkg.Provider
	log       *zerolog.Logger
}

// NewResolver creates a resolver over the database and the available
// native providers
func NewResolver(database *db.DB, providers []syspkg.Provider, log *zerolog.Logger) *Resolver {
	return &Resolver{db: database, providers: providers, log: log}
}

// Resolve checks every required dependency of the manifest. It
// collects all missing dependencies, not just the first, so the caller
// can report them at once.
func (r *Resolver) Resolve(ctx context.Context, manifest *core.Manifest) error {
	var missing []core.Dependency

	for _, dep := range manifest.RequiredDependencies() {
		ok, err := r.satisfied(ctx, dep)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &core.DependencyError{Missing: missing}
	}
	return nil
}

// MissingOptional returns the optional dependencies that are not
// satisfied. They are reported to the user but never block an install.
func (r *Resolver) MissingOptional(ctx context.Context, manifest *core.Manifest) []core.Dependency {
	var missing []core.Dependency
	for _, dep := range manifest.OptionalDependencies() {
		ok, err := r.satisfied(ctx, dep)
		if err != nil || !ok {
			missing = append(missing, dep)
		}
	}
	return missing
}

// satisfied reports whether a dependency is met by our own database or
// by any native package manager, with a compatible version
func (r *Resolver) satisfied(ctx context.Context, dep core.Dependency) (bool, error) {
	if rec, ok := r.db.Get(dep.Name); ok {
		if versionMatches(rec.Version, dep) {
			return true, nil
		}
		r.log.Debug().
			Str("dependency", dep.String()).
			Str("installed", rec.Version).
			Msg("tracked package version does not satisfy constraint")
	}

	for _, p := range r.providers {
		installed, err := p.IsInstalled(ctx, dep.Name)
		if err != nil {
			return false, err
		}
		if !installed {
			continue
		}

		if dep.Operator == "" {
			return true, nil
		}

		info, err := p.GetInfo(ctx, dep.Name)
		if err != nil {
			return false, err
		}
		if versionMatches(info.Version, dep) {
			return true, nil
		}
	}

	return false, nil
}

// versionMatches checks an installed version against a constraint
func versionMatches(installed string, dep core.Dependency) bool {
	if dep.Operator == "" {
		return true
	}

	cmp := VerCmp(installed, dep.Version)
	switch dep.Operator {
	case "=":
		return cmp == 0
	case ">=":
		return cmp >= 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case "<":
		return cmp < 0
	default:
		return false
	}
}
