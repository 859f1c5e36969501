package db

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/core"
)

// formatVersion guards against reading databases written by a newer,
// incompatible layout
const formatVersion = 1

// fileFormat is the on-disk layout: a single JSON document rewritten
// whole on every commit
type fileFormat struct {
	Version  int                              `json:"version"`
	Packages map[string]core.InstalledPackage `json:"packages"`
}

// Mutation is one atomic change to the package database
type Mutation struct {
	put    *core.InstalledPackage
	remove string
}

// Put returns a mutation that inserts or replaces a package record
func Put(record core.InstalledPackage) Mutation {
	return Mutation{put: &record}
}

// Remove returns a mutation that deletes a package record by name
func Remove(name string) Mutation {
	return Mutation{remove: name}
}

// DB is the persisted mapping from package name to installed record.
// It is the single source of truth for dependency and conflict checks.
type DB struct {
	fs     afero.Fs
	path   string
	locker Locker
	log    *zerolog.Logger

	records map[string]core.InstalledPackage
}

// Open loads the database at dbPath, creating an empty one in memory
// when no file exists yet. A file that exists but cannot be parsed is
// a corrupt-database error: the caller must abort rather than discard
// installed state.
func Open(fs afero.Fs, dbPath string, log *zerolog.Logger) (*DB, error) {
	return OpenWithLocker(fs, dbPath, defaultLocker(fs, dbPath), log)
}

// OpenWithLocker loads the database with an explicit lock strategy
func OpenWithLocker(fs afero.Fs, dbPath string, locker Locker, log *zerolog.Logger) (*DB, error) {
	d := &DB{
		fs:      fs,
		path:    dbPath,
		locker:  locker,
		log:     log,
		records: make(map[string]core.InstalledPackage),
	}

	raw, err := afero.ReadFile(fs, dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, &core.DatabaseError{Kind: core.DatabaseCorrupt, Path: dbPath, Err: err}
	}

	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &core.DatabaseError{Kind: core.DatabaseCorrupt, Path: dbPath, Err: err}
	}
	if f.Version > formatVersion {
		return nil, &core.DatabaseError{
			Kind: core.DatabaseCorrupt,
			Path: dbPath,
			Err:  fmt.Errorf("unsupported format version %d", f.Version),
		}
	}
	if f.Packages != nil {
		d.records = f.Packages
	}

	return d, nil
}

// Path returns the location of the database file
func (d *DB) Path() string {
	return d.path
}

// Lock acquires the exclusive database lock, waiting up to the
// locker's bound before failing with a locked-database error
func (d *DB) Lock() error {
	return d.locker.Lock()
}

// Unlock releases the database lock
func (d *DB) Unlock() {
	d.locker.Unlock()
}

// Get looks up an installed package record by name
func (d *DB) Get(name string) (core.InstalledPackage, bool) {
	rec, ok := d.records[name]
	return rec, ok
}

// List returns all installed package records sorted by name
func (d *DB) List() []core.InstalledPackage {
	out := make([]core.InstalledPackage, 0, len(d.records))
	for _, rec := range d.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OwnerOf returns the package owning the given absolute path, if any
func (d *DB) OwnerOf(path string) (string, bool) {
	for name, rec := range d.records {
		for _, owned := range rec.OwnedFiles {
			if owned == path {
				return name, true
			}
		}
	}
	return "", false
}

// Commit applies the mutation to the in-memory mapping and persists
// the whole mapping via temp-file-write + rename. On any persistence
// failure the in-memory state is rolled back to its pre-commit
// snapshot and a persist-failed database error is returned.
func (d *DB) Commit(m Mutation) error {
	snapshot := d.records
	next := make(map[string]core.InstalledPackage, len(d.records)+1)
	for k, v := range d.records {
		next[k] = v
	}

	switch {
	case m.put != nil:
		next[m.put.Name] = *m.put
	case m.remove != "":
		delete(next, m.remove)
	default:
		return nil
	}

	d.records = next
	if err := d.persist(); err != nil {
		d.records = snapshot
		return &core.DatabaseError{Kind: core.DatabasePersistFailed, Path: d.path, Err: err}
	}

	return nil
}

// persist writes the full mapping to a temp file in the database
// directory and renames it over the live file, so a crash mid-write
// never leaves a half-written database
func (d *DB) persist() error {
	raw, err := json.MarshalIndent(fileFormat{Version: formatVersion, Packages: d.records}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal database: %w", err)
	}
	raw = append(raw, '\n')

	dir := filepath.Dir(d.path)
	if err := d.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := d.path + ".tmp"
	f, err := d.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(raw); err != nil {
		f.Close()
		d.fs.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		d.fs.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		d.fs.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := d.fs.Rename(tmp, d.path); err != nil {
		d.fs.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	d.log.Debug().Str("path", d.path).Int("packages", len(d.records)).Msg("database persisted")
	return nil
}
