package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/archive"
	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/engine"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewReinstallCmd creates the reinstall command
func NewReinstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		prefix    string
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "reinstall [archive]",
		Short: "Reinstall a package from an archive",
		Long:  `Remove the installed version of a package and install the given archive in its place, under a single transaction.`,
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
				confirmed, err := ui.ConfirmPrompt(fmt.Sprintf("Reinstall %s %s", manifest.Name, manifest.Version))
				if err != nil {
					return err
				}
				if !confirmed {
					ui.PrintWarning("Reinstallation cancelled")
					return nil
				}
			}

			log.Info().Str("archive", archivePath).Msg("starting reinstallation")

			eng, _, err := newEngine(cfg, log)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			res, err := eng.Reinstall(context.Background(), archivePath, engine.Options{Prefix: prefix})
			if err != nil {
				ui.PrintError("reinstallation failed: %v", err)
				return err
			}

			printWarnings(res)
			ui.PrintSuccess("Reinstalled %s %s", res.Record.Name, res.Record.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "install prefix (overrides the archive's default)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")

	return cmd
}
