package cmd

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/db"
	"github.com/quantmind-br/zpkg/internal/deps"
	"github.com/quantmind-br/zpkg/internal/engine"
	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/syspkg"
	"github.com/quantmind-br/zpkg/internal/syspkg/arch"
	"github.com/quantmind-br/zpkg/internal/syspkg/debian"
	"github.com/quantmind-br/zpkg/internal/syspkg/redhat"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewRootCmd creates the root command
func NewRootCmd(cfg *config.Config, log *zerolog.Logger, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "zpkg",
		Short:        "Arch package installer",
		Long:         `Install, inspect and remove Arch Linux packages (.pkg.tar.zst) with full file tracking and atomic rollback.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewInstallCmd(cfg, log))
	cmd.AddCommand(NewUninstallCmd(cfg, log))
	cmd.AddCommand(NewReinstallCmd(cfg, log))
	cmd.AddCommand(NewListCmd(cfg, log))
	cmd.AddCommand(NewInfoCmd(cfg, log))
	cmd.AddCommand(NewDoctorCmd(cfg, log))
	cmd.AddCommand(NewCompletionCmd(cfg, log))
	cmd.AddCommand(NewVersionCmd(version))

	return cmd
}

// newEngine wires the transaction engine and its collaborators for one
// invocation
func newEngine(cfg *config.Config, log *zerolog.Logger) (*engine.Engine, []syspkg.Provider, error) {
	fs := afero.NewOsFs()

	locker := db.NewFlockLocker(cfg.Paths.DBFile+".lock", cfg.Database.LockTimeout)
	database, err := db.OpenWithLocker(fs, cfg.Paths.DBFile, locker, log)
	if err != nil {
		return nil, nil, err
	}

	runner := helpers.NewOSCommandRunner()
	providers := syspkg.Detect(
		arch.NewPacmanProvider(runner),
		debian.NewDpkgProvider(runner),
		redhat.NewRpmProvider(runner),
	)

	resolver := deps.NewResolver(database, providers, log)
	eng := engine.New(fs, database, resolver, runner, log)
	return eng, providers, nil
}

// requiresRoot reports whether writing under prefix needs privileges
func requiresRoot(prefix string) bool {
	return strings.HasPrefix(prefix, "/usr") || strings.HasPrefix(prefix, "/opt")
}

// ensurePrivileges fails early with a permission error instead of
// half-writing into a system prefix
func ensurePrivileges(prefix string) error {
	if requiresRoot(prefix) && unix.Geteuid() != 0 {
		return &core.PermissionError{Prefix: prefix}
	}
	return nil
}

// ExitCode maps an error from any command to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return core.ExitSuccess
	}

	if errors.Is(err, ui.ErrCancelled) {
		return core.ExitInterrupted
	}

	var (
		archiveErr    *core.ArchiveError
		validationErr *core.ValidationError
		depErr        *core.DependencyError
		conflictErr   *core.ConflictError
		dbErr         *core.DatabaseError
		permErr       *core.PermissionError
	)
	switch {
	case errors.As(err, &validationErr):
		return core.ExitValidation
	case errors.As(err, &archiveErr):
		return core.ExitArchive
	case errors.As(err, &depErr):
		return core.ExitDependency
	case errors.As(err, &conflictErr):
		return core.ExitConflict
	case errors.As(err, &permErr):
		return core.ExitPermission
	case errors.As(err, &dbErr):
		return core.ExitDatabase
	default:
		return core.ExitGeneral
	}
}
