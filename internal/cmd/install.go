package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/archive"
	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/engine"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewInstallCmd creates the install command
func NewInstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		prefix     string
		assumeYes  bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "install [archive]",
		Short: "Install a package archive",
		Long:  `Install an Arch package archive (.pkg.tar.zst or .pkg.tar.xz) and track every written file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archivePath := args[0]

			if _, err := os.Stat(archivePath); err != nil {
				ui.PrintError("archive not found: %s", archivePath)
				return fmt.Errorf("archive not found: %w", err)
			}

			effectivePrefix := prefix
			if effectivePrefix == "" {
				effectivePrefix = cfg.Install.Prefix
			}
			if err := ensurePrivileges(effectivePrefix); err != nil {
				ui.PrintError("%v", err)
				return err
			}

			reader := archive.NewReader(afero.NewOsFs(), log)
			manifest, err := reader.PeekManifest(archivePath)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			if !assumeYes {
				printDependencies(manifest)
				confirmed, err := ui.ConfirmPrompt(fmt.Sprintf("Install %s %s to %s", manifest.Name, manifest.Version, effectivePrefix))
				if err != nil {
					return err
				}
				if !confirmed {
					ui.PrintWarning("Installation cancelled")
					return nil
				}
			}

			log.Info().
				Str("archive", archivePath).
				Str("prefix", effectivePrefix).
				Msg("starting installation")

			eng, _, err := newEngine(cfg, log)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			var bar *ui.ProgressBar
			if !noProgress {
				eng.Progress = func(done, total int) {
					if bar == nil {
						bar = ui.NewFileBar(total, "installing")
					}
					bar.Set(done)
				}
			}

			ctx := context.Background()
			res, err := eng.Install(ctx, archivePath, engine.Options{Prefix: prefix})
			if bar != nil {
				bar.Finish()
			}
			if err != nil {
				ui.PrintError("installation failed: %v", err)
				return err
			}

			printWarnings(res)

			ui.PrintSuccess("Installed %s %s", res.Record.Name, res.Record.Version)
			ui.PrintKeyValue("  Prefix", res.Record.InstallPrefix)
			ui.PrintKeyValue("  Files", fmt.Sprintf("%d", len(res.Record.OwnedFiles)))

			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "install prefix (overrides the archive's default)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

// printDependencies lists the archive's required and optional
// dependencies ahead of the confirmation prompt
func printDependencies(m *core.Manifest) {
	if required := m.RequiredDependencies(); len(required) > 0 {
		ui.PrintInfo("Depends on:")
		for _, dep := range required {
			fmt.Printf("  %s %s\n", ui.Bullet, dep.String())
		}
	}
	if optional := m.OptionalDependencies(); len(optional) > 0 {
		ui.PrintInfo("Optional:")
		for _, dep := range optional {
			fmt.Printf("  %s %s\n", ui.Bullet, dep.String())
		}
	}
}

// printWarnings reports non-fatal validation findings and unsatisfied
// optional dependencies after a successful transaction
func printWarnings(res *engine.Result) {
	for _, w := range res.Warnings {
		ui.PrintWarning("%s: %s", w.Path, w.Reason)
	}

	if len(res.MissingOptional) > 0 {
		color.Yellow("Optional dependencies not installed:")
		for _, dep := range res.MissingOptional {
			fmt.Printf("  %s %s\n", ui.Bullet, dep.String())
		}
	}
}
