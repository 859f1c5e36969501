package archive

import (
	"archive/tar"
	"bytes"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/logging"
)

type member struct {
	name string
	mode int64
	body []byte
	typ  byte
	link string
}

const testPkginfo = "pkgname = htop\npkgver = 3.3.0-4\narch = x86_64\npkgdesc = Interactive process viewer\n"

func defaultMembers() []member {
	return []member{
		{name: ".PKGINFO", mode: 0644, body: []byte(testPkginfo), typ: tar.TypeReg},
		{name: ".MTREE", mode: 0644, body: []byte("ignored"), typ: tar.TypeReg},
		{name: "usr", typ: tar.TypeDir, mode: 0755},
		{name: "usr/bin", typ: tar.TypeDir, mode: 0755},
		{name: "usr/bin/htop", mode: 0755, body: append([]byte{0x7F, 'E', 'L', 'F'}, bytes.Repeat([]byte{0}, 60)...), typ: tar.TypeReg},
		{name: "usr/share/applications/htop.desktop", mode: 0644, body: []byte("[Desktop Entry]\nName=Htop\nExec=htop\n"), typ: tar.TypeReg},
		{name: "usr/share/icons/htop.png", mode: 0644, body: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, typ: tar.TypeReg},
		{name: "usr/share/doc/htop/README", mode: 0644, body: []byte("plain text"), typ: tar.TypeReg},
		{name: "usr/bin/top-like", mode: 0777, link: "htop", typ: tar.TypeSymlink},
	}
}

func buildTar(t *testing.T, members []member) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, m := range members {
		hdr := &tar.Header{
			Name:     m.name,
			Mode:     m.mode,
			Typeflag: m.typ,
			Linkname: m.link,
		}
		if m.typ == tar.TypeReg {
			hdr.Size = int64(len(m.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if m.typ == tar.TypeReg {
			_, err := tw.Write(m.body)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func xzCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestReader(t *testing.T) (*Reader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	log := logging.NewTestLogger(&bytes.Buffer{})
	return NewReader(fs, log), fs
}

func entryByPath(entries []core.FileEntry, rel string) *core.FileEntry {
	for i := range entries {
		if entries[i].RelativePath == rel {
			return &entries[i]
		}
	}
	return nil
}

func TestReadZstdArchive(t *testing.T) {
	r, fs := newTestReader(t)
	archive := zstdCompress(t, buildTar(t, defaultMembers()))
	require.NoError(t, afero.WriteFile(fs, "/pkg/htop-3.3.0-4-x86_64.pkg.tar.zst", archive, 0644))

	pkg, err := r.Read("/pkg/htop-3.3.0-4-x86_64.pkg.tar.zst", "/stage")
	require.NoError(t, err)

	assert.Equal(t, "htop", pkg.Manifest.Name)
	assert.Equal(t, "3.3.0-4", pkg.Manifest.Version)
	assert.Equal(t, "x86_64", pkg.Manifest.Architecture)

	// metadata members are not file entries
	assert.Nil(t, entryByPath(pkg.Entries, ".MTREE"))

	elf := entryByPath(pkg.Entries, "usr/bin/htop")
	require.NotNil(t, elf)
	assert.Equal(t, core.EntryELF, elf.Kind)
	assert.Equal(t, int64(0755), elf.Mode)

	desktop := entryByPath(pkg.Entries, "usr/share/applications/htop.desktop")
	require.NotNil(t, desktop)
	assert.Equal(t, core.EntryDesktop, desktop.Kind)

	icon := entryByPath(pkg.Entries, "usr/share/icons/htop.png")
	require.NotNil(t, icon)
	assert.Equal(t, core.EntryIcon, icon.Kind)

	plain := entryByPath(pkg.Entries, "usr/share/doc/htop/README")
	require.NotNil(t, plain)
	assert.Equal(t, core.EntryRegular, plain.Kind)

	link := entryByPath(pkg.Entries, "usr/bin/top-like")
	require.NotNil(t, link)
	assert.Equal(t, core.EntrySymlink, link.Kind)
	assert.Equal(t, "htop", link.LinkTarget)

	dir := entryByPath(pkg.Entries, "usr/bin")
	require.NotNil(t, dir)
	assert.Equal(t, core.EntryDirectory, dir.Kind)

	// payloads are staged, not held in memory
	staged, err := afero.ReadFile(fs, plain.StagedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("plain text"), staged)
}

func TestReadXzArchive(t *testing.T) {
	r, fs := newTestReader(t)
	archive := xzCompress(t, buildTar(t, defaultMembers()))
	require.NoError(t, afero.WriteFile(fs, "/pkg/htop.pkg.tar.xz", archive, 0644))

	pkg, err := r.Read("/pkg/htop.pkg.tar.xz", "/stage")
	require.NoError(t, err)
	assert.Equal(t, "htop", pkg.Manifest.Name)
}

func TestReadPlainTarArchive(t *testing.T) {
	r, fs := newTestReader(t)
	require.NoError(t, afero.WriteFile(fs, "/pkg/htop.pkg.tar", buildTar(t, defaultMembers()), 0644))

	pkg, err := r.Read("/pkg/htop.pkg.tar", "/stage")
	require.NoError(t, err)
	assert.Equal(t, "htop", pkg.Manifest.Name)
}

func TestReadMissingManifest(t *testing.T) {
	r, fs := newTestReader(t)
	members := []member{
		{name: "usr/bin/loose", mode: 0755, body: []byte("data"), typ: tar.TypeReg},
	}
	require.NoError(t, afero.WriteFile(fs, "/pkg/bad.pkg.tar.zst", zstdCompress(t, buildTar(t, members)), 0644))

	_, err := r.Read("/pkg/bad.pkg.tar.zst", "/stage")
	require.Error(t, err)

	var archErr *core.ArchiveError
	require.ErrorAs(t, err, &archErr)
	assert.Contains(t, archErr.Reason, "manifest")
}

func TestReadRejectsTraversalMember(t *testing.T) {
	r, fs := newTestReader(t)
	members := []member{
		{name: ".PKGINFO", mode: 0644, body: []byte(testPkginfo), typ: tar.TypeReg},
		{name: "../../etc/passwd", mode: 0644, body: []byte("evil"), typ: tar.TypeReg},
	}
	require.NoError(t, afero.WriteFile(fs, "/pkg/evil.pkg.tar.zst", zstdCompress(t, buildTar(t, members)), 0644))

	_, err := r.Read("/pkg/evil.pkg.tar.zst", "/stage")
	require.Error(t, err)

	var archErr *core.ArchiveError
	require.ErrorAs(t, err, &archErr)
	assert.Equal(t, "unsafe member path", archErr.Reason)
}

func TestReadRejectsEscapingSymlink(t *testing.T) {
	r, fs := newTestReader(t)
	members := []member{
		{name: ".PKGINFO", mode: 0644, body: []byte(testPkginfo), typ: tar.TypeReg},
		{name: "usr/bin/evil", mode: 0777, link: "../../../../etc/shadow", typ: tar.TypeSymlink},
	}
	require.NoError(t, afero.WriteFile(fs, "/pkg/evil.pkg.tar.zst", zstdCompress(t, buildTar(t, members)), 0644))

	_, err := r.Read("/pkg/evil.pkg.tar.zst", "/stage")
	assert.Error(t, err)
}

func TestReadTruncatedArchive(t *testing.T) {
	r, fs := newTestReader(t)

	full := buildTar(t, []member{
		{name: ".PKGINFO", mode: 0644, body: []byte(testPkginfo), typ: tar.TypeReg},
		{name: "usr/bin/big", mode: 0755, body: bytes.Repeat([]byte("A"), 4096), typ: tar.TypeReg},
	})
	// cut into the payload of the last member
	truncated := full[:len(full)-3000]
	require.NoError(t, afero.WriteFile(fs, "/pkg/cut.pkg.tar", truncated, 0644))

	_, err := r.Read("/pkg/cut.pkg.tar", "/stage")
	require.Error(t, err)

	var archErr *core.ArchiveError
	assert.ErrorAs(t, err, &archErr)
}

func TestPeekManifest(t *testing.T) {
	r, fs := newTestReader(t)
	pkginfo := testPkginfo + "depend = ncurses>=6.0\noptdepend = lsof: open files\n"
	members := defaultMembers()
	members[0].body = []byte(pkginfo)
	require.NoError(t, afero.WriteFile(fs, "/pkg/htop.pkg.tar.zst", zstdCompress(t, buildTar(t, members)), 0644))

	manifest, err := r.PeekManifest("/pkg/htop.pkg.tar.zst")
	require.NoError(t, err)
	assert.Equal(t, "htop", manifest.Name)
	assert.Equal(t, "3.3.0-4", manifest.Version)
	require.Len(t, manifest.Dependencies, 2)

	// no member payloads hit the filesystem
	ok, _ := afero.DirExists(fs, "/stage")
	assert.False(t, ok)
}

func TestPeekManifestMissingManifest(t *testing.T) {
	r, fs := newTestReader(t)
	members := []member{
		{name: "usr/bin/htop", mode: 0755, body: []byte("x"), typ: tar.TypeReg},
	}
	require.NoError(t, afero.WriteFile(fs, "/pkg/bare.pkg.tar.zst", zstdCompress(t, buildTar(t, members)), 0644))

	_, err := r.PeekManifest("/pkg/bare.pkg.tar.zst")
	require.Error(t, err)

	var archErr *core.ArchiveError
	require.ErrorAs(t, err, &archErr)
	assert.Contains(t, archErr.Reason, "manifest")
}

func TestReadNotAnArchive(t *testing.T) {
	r, fs := newTestReader(t)
	require.NoError(t, afero.WriteFile(fs, "/pkg/garbage.pkg.tar.zst", []byte("this is not compressed data"), 0644))

	_, err := r.Read("/pkg/garbage.pkg.tar.zst", "/stage")
	require.Error(t, err)

	var archErr *core.ArchiveError
	require.ErrorAs(t, err, &archErr)
}
