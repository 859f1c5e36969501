package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/fsops"
	"github.com/quantmind-br/zpkg/internal/helpers"
	"github.com/quantmind-br/zpkg/internal/security"
)

// metadata members carried by makepkg that are not file entries
var metadataMembers = map[string]bool{
	".PKGINFO":   true,
	".MTREE":     true,
	".BUILDINFO": true,
	".INSTALL":   true,
	".CHANGELOG": true,
}

// Package is the parsed result of reading a package archive: the
// manifest plus the enumerated file entries, staged under StageDir.
type Package struct {
	Manifest *core.Manifest
	Entries  []core.FileEntry
	StageDir string
}

// Reader decompresses and parses .pkg.tar.zst / .pkg.tar.xz archives.
// It never touches the destination filesystem: entry payloads are
// streamed into a caller-owned staging directory to bound memory use.
type Reader struct {
	fs  afero.Fs
	log *zerolog.Logger
}

// NewReader creates an archive reader on the given filesystem
func NewReader(fs afero.Fs, log *zerolog.Logger) *Reader {
	return &Reader{fs: fs, log: log}
}

// Read opens the archive at archivePath, parses its manifest, and
// streams every file entry into stageDir. It returns an ArchiveError
// when the archive is not valid compressed tar data, the manifest is
// missing or malformed, or an entry's payload is shorter than its
// declared size.
func (r *Reader) Read(archivePath, stageDir string) (*Package, error) {
	f, err := r.fs.Open(archivePath)
	if err != nil {
		return nil, &core.ArchiveError{Path: archivePath, Reason: "cannot open archive", Err: err}
	}
	defer f.Close()

	decomp, closeDecomp, err := r.decompress(archivePath, f)
	if err != nil {
		return nil, err
	}
	defer closeDecomp()

	pkg := &Package{StageDir: stageDir}
	tr := tar.NewReader(decomp)

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &core.ArchiveError{Path: archivePath, Reason: "corrupt tar stream", Err: err}
		}

		name := filepath.Clean(hdr.Name)
		if name == "." {
			continue
		}

		if metadataMembers[name] {
			if name == ".PKGINFO" {
				manifest, err := ParsePkginfo(tr)
				if err != nil {
					return nil, &core.ArchiveError{Path: archivePath, Reason: "malformed manifest", Err: err}
				}
				pkg.Manifest = manifest
			}
			continue
		}

		if err := security.ValidateExtractPath(stageDir, hdr.Name); err != nil {
			return nil, &core.ArchiveError{Path: archivePath, Reason: "unsafe member path", Err: err}
		}

		entry, err := r.stageEntry(tr, hdr, stageDir)
		if err != nil {
			return nil, &core.ArchiveError{Path: archivePath, Reason: fmt.Sprintf("bad entry %s", hdr.Name), Err: err}
		}
		if entry != nil {
			pkg.Entries = append(pkg.Entries, *entry)
		}
	}

	if pkg.Manifest == nil {
		return nil, &core.ArchiveError{Path: archivePath, Reason: "manifest (.PKGINFO) missing"}
	}

	r.log.Debug().
		Str("package", pkg.Manifest.Name).
		Str("version", pkg.Manifest.Version).
		Int("entries", len(pkg.Entries)).
		Msg("archive parsed")

	return pkg, nil
}

// PeekManifest reads just the manifest out of an archive without
// staging any file entries. Confirmation prompts use it to show the
// package and its dependencies before any work happens.
func (r *Reader) PeekManifest(archivePath string) (*core.Manifest, error) {
	f, err := r.fs.Open(archivePath)
	if err != nil {
		return nil, &core.ArchiveError{Path: archivePath, Reason: "cannot open archive", Err: err}
	}
	defer f.Close()

	decomp, closeDecomp, err := r.decompress(archivePath, f)
	if err != nil {
		return nil, err
	}
	defer closeDecomp()

	tr := tar.NewReader(decomp)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &core.ArchiveError{Path: archivePath, Reason: "corrupt tar stream", Err: err}
		}
		if filepath.Clean(hdr.Name) != ".PKGINFO" {
			continue
		}

		manifest, err := ParsePkginfo(tr)
		if err != nil {
			return nil, &core.ArchiveError{Path: archivePath, Reason: "malformed manifest", Err: err}
		}
		return manifest, nil
	}

	return nil, &core.ArchiveError{Path: archivePath, Reason: "manifest (.PKGINFO) missing"}
}

// decompress wraps the archive file in the right decompression layer,
// chosen by magic bytes rather than extension
func (r *Reader) decompress(archivePath string, f afero.File) (io.Reader, func(), error) {
	comp, err := helpers.DetectCompression(r.fs, archivePath)
	if err != nil {
		return nil, nil, &core.ArchiveError{Path: archivePath, Reason: "cannot read archive header", Err: err}
	}

	switch comp {
	case helpers.CompressionZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, &core.ArchiveError{Path: archivePath, Reason: "not valid zstd data", Err: err}
		}
		return dec, dec.Close, nil

	case helpers.CompressionXz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, &core.ArchiveError{Path: archivePath, Reason: "not valid xz data", Err: err}
		}
		return xr, func() {}, nil

	case helpers.CompressionNone:
		return f, func() {}, nil

	default:
		return nil, nil, &core.ArchiveError{Path: archivePath, Reason: "not a zstd or xz compressed archive"}
	}
}

// stageEntry writes one tar member into the staging directory and
// classifies it. Directories and symlinks carry no payload.
func (r *Reader) stageEntry(tr *tar.Reader, hdr *tar.Header, stageDir string) (*core.FileEntry, error) {
	rel := filepath.Clean(hdr.Name)
	staged := filepath.Join(stageDir, rel)

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := fsops.EnsureDir(r.fs, staged, os.FileMode(hdr.Mode)|0700); err != nil {
			return nil, err
		}
		return &core.FileEntry{
			RelativePath: rel,
			Kind:         core.EntryDirectory,
			Mode:         hdr.Mode,
			StagedPath:   staged,
		}, nil

	case tar.TypeSymlink:
		if err := security.ValidateSymlink(stageDir, staged, hdr.Linkname); err != nil {
			return nil, err
		}
		return &core.FileEntry{
			RelativePath: rel,
			Kind:         core.EntrySymlink,
			Mode:         hdr.Mode,
			LinkTarget:   hdr.Linkname,
			StagedPath:   staged,
		}, nil

	case tar.TypeReg:
		if err := fsops.EnsureDir(r.fs, filepath.Dir(staged), 0755); err != nil {
			return nil, err
		}

		out, err := r.fs.OpenFile(staged, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)|0600)
		if err != nil {
			return nil, fmt.Errorf("create staged file: %w", err)
		}

		var head bytes.Buffer
		n, err := io.Copy(out, io.TeeReader(io.LimitReader(tr, hdr.Size), &limitedHead{buf: &head}))
		out.Close()
		if err != nil {
			return nil, fmt.Errorf("stream payload: %w", err)
		}
		if n != hdr.Size {
			return nil, fmt.Errorf("declared size %d but payload has %d bytes", hdr.Size, n)
		}
		// a tar stream truncated mid-payload surfaces here as well
		if _, err := io.CopyN(io.Discard, tr, 1); err != io.EOF {
			if err == nil {
				return nil, fmt.Errorf("payload longer than declared size %d", hdr.Size)
			}
			return nil, fmt.Errorf("truncated payload: %w", err)
		}

		return &core.FileEntry{
			RelativePath: rel,
			Kind:         classify(rel, head.Bytes()),
			Mode:         hdr.Mode,
			Size:         hdr.Size,
			StagedPath:   staged,
		}, nil

	default:
		// char/block/fifo members never appear in valid packages
		r.log.Warn().Str("member", hdr.Name).Msg("skipping unsupported tar member type")
		return nil, nil
	}
}

// limitedHead captures the first 512 bytes passing through a TeeReader
type limitedHead struct {
	buf *bytes.Buffer
}

func (l *limitedHead) Write(p []byte) (int, error) {
	if remain := 512 - l.buf.Len(); remain > 0 {
		if len(p) > remain {
			l.buf.Write(p[:remain])
		} else {
			l.buf.Write(p)
		}
	}
	return len(p), nil
}

// classify assigns the entry kind from its extension and leading bytes
func classify(rel string, head []byte) core.EntryKind {
	switch strings.ToLower(filepath.Ext(rel)) {
	case ".desktop":
		return core.EntryDesktop
	case ".png", ".svg", ".xpm":
		return core.EntryIcon
	}

	if helpers.IsELFHeader(head) {
		return core.EntryELF
	}

	return core.EntryRegular
}
