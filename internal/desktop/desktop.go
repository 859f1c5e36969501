package desktop

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Entry represents a parsed .desktop file
type Entry struct {
	Type        string
	Name        string
	GenericName string
	Comment     string
	Icon        string
	Exec        string
	Terminal    bool
	Categories  []string
	Keywords    []string
}

// Parse parses a .desktop file from a reader. It enforces the
// freedesktop key-value group syntax: every non-comment line is either
// a [Group] header or a key=value pair inside a group.
func Parse(r io.Reader) (*Entry, error) {
	e := &Entry{}
	scanner := bufio.NewScanner(r)

	inGroup := false
	inDesktopEntry := false
	sawDesktopEntry := false
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			if !strings.HasSuffix(line, "]") {
				return nil, fmt.Errorf("line %d: unterminated group header %q", lineNo, line)
			}
			inGroup = true
			inDesktopEntry = line == "[Desktop Entry]"
			if inDesktopEntry {
				sawDesktopEntry = true
			}
			continue
		}

		if !inGroup {
			return nil, fmt.Errorf("line %d: entry %q outside any group", lineNo, line)
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: %q is not a key=value pair", lineNo, line)
		}

		if !inDesktopEntry {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "Type":
			e.Type = value
		case "Name":
			e.Name = value
		case "GenericName":
			e.GenericName = value
		case "Comment":
			e.Comment = value
		case "Icon":
			e.Icon = value
		case "Exec":
			e.Exec = value
		case "Terminal":
			e.Terminal = value == "true"
		case "Categories":
			e.Categories = parseSemicolonList(value)
		case "Keywords":
			e.Keywords = parseSemicolonList(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan desktop file: %w", err)
	}

	if !sawDesktopEntry {
		return nil, fmt.Errorf("missing [Desktop Entry] group")
	}

	return e, nil
}

// Validate checks the required keys: Name is mandatory, and at least
// one of Exec or Type must be present
func Validate(e *Entry) error {
	if e.Name == "" {
		return fmt.Errorf("Name field is required")
	}
	if e.Exec == "" && e.Type == "" {
		return fmt.Errorf("either Exec or Type field is required")
	}
	return nil
}

// parseSemicolonList parses a semicolon-separated list value
func parseSemicolonList(value string) []string {
	value = strings.TrimSuffix(value, ";")
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
