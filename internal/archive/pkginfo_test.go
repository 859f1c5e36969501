package archive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/zpkg/internal/core"
)

const samplePkginfo = `# Generated by makepkg 6.1.0
pkgname = htop
pkgbase = htop
pkgver = 3.3.0-4
pkgdesc = Interactive process viewer
url = https://htop.dev/
builddate = 1712345678
packager = John Doe <john@example.org>
size = 254000
arch = x86_64
license = GPL
depend = ncurses
depend = glibc>=2.38
optdepend = lsof: show open files for a process
optdepend = strace: attach to a running process
`

func TestParsePkginfo(t *testing.T) {
	m, err := ParsePkginfo(strings.NewReader(samplePkginfo))
	require.NoError(t, err)

	assert.Equal(t, "htop", m.Name)
	assert.Equal(t, "3.3.0-4", m.Version)
	assert.Equal(t, "x86_64", m.Architecture)
	assert.Equal(t, "Interactive process viewer", m.Description)
	assert.Equal(t, DefaultPrefix, m.InstallPrefix)

	require.Len(t, m.Dependencies, 4)
	assert.Equal(t, core.Dependency{Name: "ncurses"}, m.Dependencies[0])
	assert.Equal(t, core.Dependency{Name: "glibc", Operator: ">=", Version: "2.38"}, m.Dependencies[1])
	assert.Equal(t, core.Dependency{Name: "lsof", Optional: true}, m.Dependencies[2])

	assert.Len(t, m.RequiredDependencies(), 2)
	assert.Len(t, m.OptionalDependencies(), 2)
}

func TestParsePkginfoPrefixOverride(t *testing.T) {
	m, err := ParsePkginfo(strings.NewReader("pkgname = foo\npkgver = 1.0-1\nprefix = /opt/foo\n"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/foo", m.InstallPrefix)
}

func TestParsePkginfoErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing pkgname", "pkgver = 1.0-1\n"},
		{"missing pkgver", "pkgname = foo\n"},
		{"invalid pkgname", "pkgname = bad name\npkgver = 1.0-1\n"},
		{"invalid depend", "pkgname = foo\npkgver = 1.0-1\ndepend = bad pkg\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePkginfo(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestParseDependency(t *testing.T) {
	tests := []struct {
		spec     string
		expected core.Dependency
	}{
		{"ncurses", core.Dependency{Name: "ncurses"}},
		{"glibc>=2.38", core.Dependency{Name: "glibc", Operator: ">=", Version: "2.38"}},
		{"readline=8.2", core.Dependency{Name: "readline", Operator: "=", Version: "8.2"}},
		{"zlib<2.0", core.Dependency{Name: "zlib", Operator: "<", Version: "2.0"}},
		{"pcre2<=10.43", core.Dependency{Name: "pcre2", Operator: "<=", Version: "10.43"}},
		{"bash>5", core.Dependency{Name: "bash", Operator: ">", Version: "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			dep, err := ParseDependency(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dep)
			assert.Equal(t, tt.spec, dep.String())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDependency("bad name>=1.0")
		assert.Error(t, err)
	})
}
