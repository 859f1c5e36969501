package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/quantmind-br/zpkg/internal/core"
)

// Color scheme for zpkg
var (
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow)
	Info    = color.New(color.FgCyan)

	Highlight = color.New(color.FgHiCyan, color.Bold)
	Muted     = color.New(color.Faint)
	Bold      = color.New(color.Bold)

	CheckMark = color.GreenString("✓")
	CrossMark = color.RedString("✗")
	Arrow     = color.CyanString("→")
	Bullet    = color.HiBlackString("•")

	// Entry kind colors
	KindELF     = color.New(color.FgBlue)
	KindDesktop = color.New(color.FgMagenta)
	KindIcon    = color.New(color.FgYellow)
	KindSymlink = color.New(color.FgCyan)
)

// InitColors initializes color settings based on environment
func InitColors() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	if os.Getenv("TERM") == "dumb" {
		color.NoColor = true
	}
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	Success.Fprintf(os.Stdout, "%s %s\n", CheckMark, fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	Error.Fprintf(os.Stderr, "%s Error: %s\n", CrossMark, fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	Warning.Fprintf(os.Stderr, "Warning: %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	Info.Fprintf(os.Stdout, "%s %s\n", Arrow, fmt.Sprintf(format, args...))
}

// PrintStep prints a step indicator
func PrintStep(step, total int, format string, args ...interface{}) {
	Highlight.Fprintf(os.Stdout, "[%d/%d] ", step, total)
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// PrintKeyValue prints a key-value pair with color
func PrintKeyValue(key, value string) {
	Bold.Fprintf(os.Stdout, "%s: ", key)
	fmt.Fprintln(os.Stdout, value)
}

// PrintSeparator prints a separator line
func PrintSeparator() {
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintHeader prints a section header
func PrintHeader(text string) {
	fmt.Fprintln(os.Stdout)
	Bold.Fprintln(os.Stdout, text)
	Muted.Fprintln(os.Stdout, "────────────────────────────────────────")
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(os.Stdout, "  %s %s\n", Bullet, item)
	}
}

// ColorizeKind returns a colored entry kind string
func ColorizeKind(kind core.EntryKind) string {
	switch kind {
	case core.EntryELF:
		return KindELF.Sprint(kind)
	case core.EntryDesktop:
		return KindDesktop.Sprint(kind)
	case core.EntryIcon:
		return KindIcon.Sprint(kind)
	case core.EntrySymlink:
		return KindSymlink.Sprint(kind)
	default:
		return string(kind)
	}
}

// DisableColors disables all color output
func DisableColors() {
	color.NoColor = true
}
