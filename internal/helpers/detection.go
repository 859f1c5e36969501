package helpers

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Compression identifies the compression layer of a package archive
type Compression string

const (
	CompressionZstd    Compression = "zstd"
	CompressionXz      Compression = "xz"
	CompressionNone    Compression = "none" // plain tar
	CompressionUnknown Compression = "unknown"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	elfMagic  = []byte{0x7F, 'E', 'L', 'F'}
)

// DetectCompression identifies the compression of a file by magic
// bytes, not extension
func DetectCompression(fs afero.Fs, path string) (Compression, error) {
	f, err := fs.Open(path)
	if err != nil {
		return CompressionUnknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return CompressionUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	if len(header) >= 4 && bytes.Equal(header[:4], zstdMagic) {
		return CompressionZstd, nil
	}

	if len(header) >= 6 && bytes.Equal(header[:6], xzMagic) {
		return CompressionXz, nil
	}

	// Tar magic: "ustar" at offset 257
	if len(header) >= 262 && bytes.Equal(header[257:262], []byte("ustar")) {
		return CompressionNone, nil
	}

	return CompressionUnknown, nil
}

// IsELFHeader reports whether the buffer starts with the ELF magic
func IsELFHeader(buf []byte) bool {
	return len(buf) >= 4 && bytes.Equal(buf[:4], elfMagic)
}
