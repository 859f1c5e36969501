package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/zpkg/internal/config"
	"github.com/quantmind-br/zpkg/internal/fsops"
	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/sysinfo"
	"github.com/quantmind-br/zpkg/internal/ui"
)

// NewDoctorCmd creates the doctor command
func NewDoctorCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check host environment and database integrity",
		Long:  `Report host information, native package manager counts, and the health of the zpkg state directory and database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			fs := afero.NewOsFs()
			runner := helpers.NewOSCommandRunner()

			var issues []string

			eng, providers, err := newEngine(cfg, log)

			ui.PrintHeader("Host")
			report := sysinfo.Collect(ctx, fs, runner, providers)
			ui.PrintKeyValue("OS", report.OS)
			ui.PrintKeyValue("Kernel", report.Kernel)
			ui.PrintKeyValue("Shell", report.Shell)
			ui.PrintKeyValue("Desktop", report.Desktop)

			ui.PrintHeader("Native Package Managers")
			if len(report.Providers) == 0 {
				ui.PrintInfo("none detected")
			}
			for _, p := range report.Providers {
				if p.Err != nil {
					ui.PrintWarning("%s: count failed (%v)", p.Name, p.Err)
					continue
				}
				ui.PrintSuccess("%s: %d packages", p.Name, p.Count)
			}

			ui.PrintHeader("State")
			if err := fsops.EnsureDir(fs, cfg.Paths.StateDir, 0755); err != nil {
				ui.PrintError("State directory: not accessible (%s)", cfg.Paths.StateDir)
				issues = append(issues, fmt.Sprintf("state directory not accessible: %s", cfg.Paths.StateDir))
			} else if werr := fsops.CheckWritable(fs, cfg.Paths.StateDir); werr != nil {
				ui.PrintError("State directory: not writable (%s)", cfg.Paths.StateDir)
				issues = append(issues, fmt.Sprintf("state directory not writable: %s", cfg.Paths.StateDir))
			} else {
				ui.PrintSuccess("State directory: %s", cfg.Paths.StateDir)
			}

			if err != nil {
				ui.PrintError("Database: %v", err)
				issues = append(issues, fmt.Sprintf("database not readable: %v", err))
			} else {
				records := eng.DB().List()
				ui.PrintSuccess("Database: %s", cfg.Paths.DBFile)
				ui.PrintInfo("Tracked packages: %d", len(records))

				if verbose {
					broken := 0
					for _, rec := range records {
						for _, path := range rec.OwnedFiles {
							if !fsops.Exists(fs, path) {
								ui.PrintWarning("%s: missing %s", rec.Name, path)
								broken++
							}
						}
					}
					if broken == 0 {
						ui.PrintSuccess("All tracked files present")
					} else {
						issues = append(issues, fmt.Sprintf("%d tracked files missing from disk", broken))
					}
				}
			}

			ui.PrintHeader("Tools")
			for _, tool := range []string{"update-desktop-database", "pacman", "uname"} {
				if runner.CommandExists(tool) {
					ui.PrintSuccess("%s: found", tool)
				} else {
					ui.PrintInfo("%s: not found (optional)", tool)
				}
			}

			fmt.Println()
			if len(issues) > 0 {
				ui.PrintError("Found %d issue(s):", len(issues))
				ui.PrintList(issues)
				return fmt.Errorf("system check failed with %d issue(s)", len(issues))
			}

			ui.PrintSuccess("All checks passed")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verify every tracked file exists on disk")

	return cmd
}
