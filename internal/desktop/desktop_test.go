package desktop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDesktop = `[Desktop Entry]
Type=Application
Name=Htop
GenericName=Process Viewer
Comment=Interactive process viewer
Exec=htop
Icon=htop
Terminal=true
Categories=System;Monitor;
Keywords=system;process;task;
`

func TestParseValid(t *testing.T) {
	e, err := Parse(strings.NewReader(validDesktop))
	require.NoError(t, err)

	assert.Equal(t, "Application", e.Type)
	assert.Equal(t, "Htop", e.Name)
	assert.Equal(t, "Process Viewer", e.GenericName)
	assert.Equal(t, "htop", e.Exec)
	assert.True(t, e.Terminal)
	assert.Equal(t, []string{"System", "Monitor"}, e.Categories)
	assert.Equal(t, []string{"system", "process", "task"}, e.Keywords)
}

func TestParseIgnoresOtherGroups(t *testing.T) {
	content := `[Desktop Entry]
Name=App
Exec=app

[Desktop Action Gallery]
Name=Gallery
Exec=app --gallery
`
	e, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "App", e.Name)
	assert.Equal(t, "app", e.Exec, "keys outside [Desktop Entry] must not overwrite")
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"entry before any group", "Name=App\n"},
		{"unterminated group header", "[Desktop Entry\nName=App\n"},
		{"bare word inside group", "[Desktop Entry]\nName=App\nnotakeyvalue\n"},
		{"missing desktop entry group", "[Other Group]\nName=App\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&Entry{Name: "App", Exec: "app"}))
	assert.NoError(t, Validate(&Entry{Name: "Docs", Type: "Link"}))

	assert.Error(t, Validate(&Entry{Exec: "app"}), "Name is mandatory")
	assert.Error(t, Validate(&Entry{Name: "App"}), "Exec or Type is mandatory")
}
