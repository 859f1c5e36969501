package sysinfo

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// ProviderCount is the installed-package count of one native manager
type ProviderCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Err   error  `json:"-"`
}

// Report is a snapshot of the host environment
type Report struct {
	OS        string          `json:"os"`
	Kernel    string          `json:"kernel"`
	Shell     string          `json:"shell"`
	Desktop   string          `json:"desktop"`
	Providers []ProviderCount `json:"providers"`
}

// Collect gathers host information. Every field degrades to "unknown"
// rather than failing; a diagnostics report should always render.
func Collect(ctx context.Context, fs afero.Fs, runner helpers.CommandRunner, providers []syspkg.Provider) *Report {
	r := &Report{
		OS:      osRelease(fs),
		Kernel:  kernel(ctx, runner),
		Shell:   envOr("SHELL", "unknown"),
		Desktop: envOr("XDG_CURRENT_DESKTOP", "unknown"),
	}

	for _, p := range providers {
		count, err := p.Count(ctx)
		r.Providers = append(r.Providers, ProviderCount{Name: p.Name(), Count: count, Err: err})
	}

	return r
}

// osRelease reads PRETTY_NAME from /etc/os-release
func osRelease(fs afero.Fs) string {
	f, err := fs.Open("/etc/os-release")
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
			return strings.Trim(value, `"`)
		}
	}
	return "unknown"
}

func kernel(ctx context.Context, runner helpers.CommandRunner) string {
	if runner == nil || !runner.CommandExists("uname") {
		return "unknown"
	}
	out, err := runner.RunCommand(ctx, "uname", "-r")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
