package icons

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestCheckMagic(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		head    []byte
		wantErr bool
	}{
		{"valid png", "icon.png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n', 0, 0}, false},
		{"png without signature", "icon.png", []byte("JFIF garbage"), true},
		{"svg with xml declaration", "icon.svg", []byte(`<?xml version="1.0"?><svg/>`), false},
		{"svg bare root element", "icon.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`), false},
		{"svg that is not svg", "icon.svg", []byte("<html></html>"), true},
		{"valid xpm", "icon.xpm", []byte("/* XPM */\nstatic char *icon[] = {"), false},
		{"xpm without header", "icon.xpm", []byte("static char *icon[] = {"), true},
		{"unknown extension", "icon.ico", []byte{0, 0, 1, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMagic(tt.path, tt.head)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDetectSize(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("size from path", func(t *testing.T) {
		assert.Equal(t, "48x48", DetectSize(fs, "/usr/share/icons/hicolor/48x48/apps/htop.png"))
		assert.Equal(t, "256x256", DetectSize(fs, "/icons/256x256/app.png"))
	})

	t.Run("scalable from svg", func(t *testing.T) {
		assert.Equal(t, "scalable", DetectSize(fs, "/usr/share/icons/hicolor/scalable/apps/htop.svg"))
		assert.Equal(t, "scalable", DetectSize(fs, "/plain/htop.svg"))
	})

	t.Run("dimensions from image data", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/icons/htop.png", pngBytes(t, 64, 64), 0644))
		assert.Equal(t, "64x64", DetectSize(fs, "/icons/htop.png"))
	})

	t.Run("fallback", func(t *testing.T) {
		assert.Equal(t, "48x48", DetectSize(fs, "/icons/unknown.png"))
	})
}

func TestReadHead(t *testing.T) {
	fs := afero.NewMemMapFs()
	payload := bytes.Repeat([]byte("x"), 1024)
	require.NoError(t, afero.WriteFile(fs, "/big", payload, 0644))
	require.NoError(t, afero.WriteFile(fs, "/small", []byte("tiny"), 0644))

	head, err := ReadHead(fs, "/big")
	require.NoError(t, err)
	assert.Len(t, head, 512)

	head, err = ReadHead(fs, "/small")
	require.NoError(t, err)
	assert.Equal(t, []byte("tiny"), head)

	_, err = ReadHead(fs, "/missing")
	assert.Error(t, err)
}
