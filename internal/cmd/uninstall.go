package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewUninstallCmd creates the uninstall command
func NewUninstallCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "uninstall [package]",
		Short: "Uninstall a tracked package",
		Long:  `Remove every file owned by a previously installed package. Run without arguments for an interactive selector.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := newEngine(cfg, log)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			var name string
			if len(args) == 1 {
				// An archive filename is accepted in place of a
				// package name, matching the install invocation
				name = args[0]
				if strings.Contains(name, ".pkg.tar") {
					archiveName := name
					name = helpers.PackageNameFromArchive(archiveName)
					if ver := helpers.VersionFromArchive(archiveName); ver != "" {
						if rec, ok := eng.DB().Get(name); ok && rec.Version != ver {
							ui.PrintWarning("archive names version %s but %s is installed", ver, rec.Version)
						}
					}
				}
			} else {
				name, err = selectInstalled(eng.DB().List())
				if err != nil {
					return err
				}
				if name == "" {
					ui.PrintInfo("No packages installed")
					return nil
				}
			}

			if rec, ok := eng.DB().Get(name); ok {
				if err := ensurePrivileges(rec.InstallPrefix); err != nil {
					ui.PrintError("%v", err)
					return err
				}
			}

			if !assumeYes {
				confirmed, err := ui.ConfirmDangerousAction("uninstall", name)
				if err != nil {
					return err
				}
				if !confirmed {
					ui.PrintWarning("Uninstallation cancelled")
					return nil
				}
			}

			log.Info().Str("package", name).Msg("starting uninstallation")

			res, err := eng.Uninstall(context.Background(), name)
			if err != nil {
				ui.PrintError("uninstallation failed: %v", err)
				return err
			}

			ui.PrintSuccess("Uninstalled %s %s (%d files removed)",
				res.Record.Name, res.Record.Version, len(res.Record.OwnedFiles))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip confirmation prompts")

	return cmd
}

// selectInstalled runs the fuzzy selector over the installed set and
// returns the chosen package name, or "" when nothing is installed
func selectInstalled(records []core.InstalledPackage) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	labels := make([]string, len(records))
	for i, rec := range records {
		labels[i] = fmt.Sprintf("%s %s (%s)", rec.Name, rec.Version, rec.InstalledAt.Format("2006-01-02"))
	}

	index, _, err := ui.SelectPrompt("Select package to uninstall", labels)
	if err != nil {
		return "", err
	}
	return records[index].Name, nil
}
