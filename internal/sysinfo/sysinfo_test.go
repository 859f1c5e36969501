package sysinfo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	exists  map[string]bool
	outputs map[string]string
}

func (f *fakeRunner) CommandExists(name string) bool { return f.exists[name] }

func (f *fakeRunner) RunCommand(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f.outputs[key]
	if !ok {
		return "", errors.New("exit status 1")
	}
	return out, nil
}

func (f *fakeRunner) GetExitCode(err error) int { return 0 }

func TestCollect(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/os-release",
		[]byte("NAME=\"Arch Linux\"\nPRETTY_NAME=\"Arch Linux\"\nID=arch\n"), 0644))

	runner := &fakeRunner{
		exists:  map[string]bool{"uname": true},
		outputs: map[string]string{"uname -r": "6.18.2-arch1-1\n"},
	}

	report := Collect(context.Background(), fs, runner, nil)
	assert.Equal(t, "Arch Linux", report.OS)
	assert.Equal(t, "6.18.2-arch1-1", report.Kernel)
	assert.Empty(t, report.Providers)
}

func TestCollectDegradesToUnknown(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &fakeRunner{exists: map[string]bool{}}

	report := Collect(context.Background(), fs, runner, nil)
	assert.Equal(t, "unknown", report.OS)
	assert.Equal(t, "unknown", report.Kernel)
}
