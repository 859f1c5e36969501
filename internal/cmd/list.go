package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewListCmd creates the list command
func NewListCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var (
		jsonOutput bool
		filterName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		Long:  `List all packages tracked by the database, sorted by name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := newEngine(cfg, log)
			if err != nil {
				ui.PrintError("%v", err)
				return err
			}

			records := filterRecords(eng.DB().List(), filterName)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				if filterName != "" {
					ui.PrintWarning("No packages found matching %q", filterName)
				} else {
					ui.PrintInfo("No packages installed")
				}
				return nil
			}

			ui.PrintHeader("Installed Packages")
			fmt.Printf("Total: %d packages\n\n", len(records))

			table := tablewriter.NewTable(cmd.OutOrStdout(),
				tablewriter.WithHeader([]string{"Name", "Version", "Arch", "Prefix", "Files", "Installed"}),
				tablewriter.WithAlignment(tw.MakeAlign(6, tw.AlignLeft)),
				tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
			)

			for _, rec := range records {
				arch := rec.Architecture
				if arch == "" {
					arch = "-"
				}
				table.Append(
					rec.Name,
					rec.Version,
					arch,
					rec.InstallPrefix,
					fmt.Sprintf("%d", len(rec.OwnedFiles)),
					rec.InstalledAt.Format("2006-01-02 15:04"),
				)
			}

			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&filterName, "name", "", "filter by package name (partial match)")

	return cmd
}

// filterRecords filters records by case-insensitive partial name match
func filterRecords(records []core.InstalledPackage, filterName string) []core.InstalledPackage {
	if filterName == "" {
		return records
	}

	filtered := make([]core.InstalledPackage, 0, len(records))
	needle := strings.ToLower(filterName)
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), needle) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
