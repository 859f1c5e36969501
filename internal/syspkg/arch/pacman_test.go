package arch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/zpkg/internal/syspkg"
)

// fakeRunner scripts command output keyed by the joined command line
type fakeRunner struct {
	exists  map[string]bool
	outputs map[string]string
}

func (f *fakeRunner) CommandExists(name string) bool {
	return f.exists[name]
}

func (f *fakeRunner) RunCommand(_ context.Context, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	out, ok := f.outputs[key]
	if !ok {
		return "", errors.New("exit status 1")
	}
	return out, nil
}

func (f *fakeRunner) GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

const pacmanQiOutput = `Name            : ncurses
Version         : 6.4_20230520-1
Description     : System V Release 4.0 curses emulation library
`

func TestPacmanIsInstalled(t *testing.T) {
	runner := &fakeRunner{
		exists:  map[string]bool{"pacman": true},
		outputs: map[string]string{"pacman -Qi ncurses": pacmanQiOutput},
	}
	p := NewPacmanProvider(runner)

	assert.True(t, p.Available())

	ok, err := p.IsInstalled(context.Background(), "ncurses")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.IsInstalled(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPacmanGetInfo(t *testing.T) {
	runner := &fakeRunner{
		exists:  map[string]bool{"pacman": true},
		outputs: map[string]string{"pacman -Qi ncurses": pacmanQiOutput},
	}
	p := NewPacmanProvider(runner)

	info, err := p.GetInfo(context.Background(), "ncurses")
	require.NoError(t, err)
	assert.Equal(t, "6.4_20230520-1", info.Version)
}

func TestPacmanCount(t *testing.T) {
	runner := &fakeRunner{
		exists:  map[string]bool{"pacman": true},
		outputs: map[string]string{"pacman -Q": "bash 5.2-1\nncurses 6.4-1\nhtop 3.3.0-4\n"},
	}
	p := NewPacmanProvider(runner)

	count, err := p.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDetectSkipsUnavailable(t *testing.T) {
	available := NewPacmanProvider(&fakeRunner{exists: map[string]bool{"pacman": true}})
	missing := NewPacmanProvider(&fakeRunner{exists: map[string]bool{}})

	found := syspkg.Detect(missing, available)
	require.Len(t, found, 1)
	assert.Equal(t, "pacman", found[0].Name())
}
