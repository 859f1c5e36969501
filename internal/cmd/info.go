package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/icons"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewInfoCmd creates the info command
func NewInfoCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		showFiles  bool
	)

	cmd := &cobra.Command{
		Use:   "info [package]",
		Short: "Show details of an installed package",
		Long:  `Show the tracked record of one installed package: version, prefix, install date and owned files.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			eng, _, err := newEngine(cfg, log)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			rec, ok := eng.DB().Get(name)
			if !ok {
				ui.PrintError("package not found: %s", name)
				ui.PrintInfo("Use 'zpkg list' to see installed packages")
				return &core.UninstallError{Package: name, NotInstalled: true}
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			ui.PrintHeader(rec.Name)
			ui.PrintKeyValue("Version", rec.Version)
			if rec.Architecture != "" {
				ui.PrintKeyValue("Architecture", rec.Architecture)
			}
			ui.PrintKeyValue("Prefix", rec.InstallPrefix)
			ui.PrintKeyValue("Installed", rec.InstalledAt.Format("2006-01-02 15:04:05"))
			ui.PrintKeyValue("Files", fmt.Sprintf("%d", len(rec.OwnedFiles)))

			if showFiles {
				fmt.Println()
				fs := afero.NewOsFs()
				items := make([]string, len(rec.OwnedFiles))
				for i, path := range rec.OwnedFiles {
					items[i] = path
					switch strings.ToLower(filepath.Ext(path)) {
					case ".png", ".svg", ".xpm":
						items[i] = fmt.Sprintf("%s [%s]", path, icons.DetectSize(fs, path))
					}
				}
				ui.PrintList(items)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().BoolVarP(&showFiles, "files", "f", false, "list every owned file")

	return cmd
}
