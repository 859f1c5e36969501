package icons

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"path/filepath"
	"regexp"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/spf13/afero"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// CheckMagic verifies that an icon's leading bytes match the container
// format its extension declares. Recognized extensions: .png, .svg,
// .xpm.
func CheckMagic(path string, head []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if len(head) < len(pngMagic) || !bytes.Equal(head[:len(pngMagic)], pngMagic) {
			return fmt.Errorf("%s: missing PNG signature", path)
		}
		return nil

	case ".svg":
		trimmed := bytes.TrimLeft(head, " \t\r\n")
		if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<svg")) || bytes.Contains(head, []byte("<svg")) {
			return nil
		}
		return fmt.Errorf("%s: not an SVG document", path)

	case ".xpm":
		if !bytes.Contains(head, []byte("/* XPM */")) {
			return fmt.Errorf("%s: missing XPM header", path)
		}
		return nil

	default:
		return fmt.Errorf("%s: unrecognized icon extension", path)
	}
}

// DetectSize detects an icon's size classification ("48x48",
// "scalable", ...) from its path, falling back to decoding the image
// dimensions
func DetectSize(fs afero.Fs, iconPath string) string {
	re := regexp.MustCompile(`(\d+)x(\d+)`)
	if matches := re.FindStringSubmatch(iconPath); len(matches) >= 2 {
		return matches[0]
	}

	lower := strings.ToLower(iconPath)
	if strings.Contains(lower, "scalable") || strings.HasSuffix(lower, ".svg") {
		return "scalable"
	}

	if size := imageDimensions(fs, iconPath); size != "" {
		return size
	}

	return "48x48"
}

// imageDimensions reads actual dimensions from a raster image file
func imageDimensions(fs afero.Fs, imagePath string) string {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp":
	default:
		return ""
	}

	file, err := fs.Open(imagePath)
	if err != nil {
		return ""
	}
	defer file.Close()

	// Decode only the config (dimensions) without loading the image
	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return ""
	}

	// hicolor expects square sizes, use the larger dimension
	side := config.Width
	if config.Height > side {
		side = config.Height
	}
	return fmt.Sprintf("%dx%d", side, side)
}

// ReadHead reads the first 512 bytes of a file for magic sniffing
func ReadHead(fs afero.Fs, path string) ([]byte, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}
