package core

import "time"

// EntryKind classifies a file entry inside a package archive
type EntryKind string

const (
	EntryRegular   EntryKind = "regular"
	EntrySymlink   EntryKind = "symlink"
	EntryDirectory EntryKind = "directory"
	EntryELF       EntryKind = "elf"
	EntryDesktop   EntryKind = "desktop"
	EntryIcon      EntryKind = "icon"
)

// Dependency is one declared dependency constraint, e.g. "glibc>=2.38"
type Dependency struct {
	Name     string `json:"name"`
	Operator string `json:"operator,omitempty"` // one of "", "<", "<=", "=", ">=", ">"
	Version  string `json:"version,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

// String renders the dependency back into pacman constraint syntax
func (d Dependency) String() string {
	if d.Operator == "" {
		return d.Name
	}
	return d.Name + d.Operator + d.Version
}

// Manifest is the package metadata parsed from the archive's .PKGINFO.
// Immutable once parsed.
type Manifest struct {
	Name          string       `json:"name"`
	Version       string       `json:"version"`
	Architecture  string       `json:"architecture"`
	Description   string       `json:"description,omitempty"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
	InstallPrefix string       `json:"install_prefix"` // default /usr unless the archive overrides it
}

// RequiredDependencies returns the non-optional dependencies
func (m *Manifest) RequiredDependencies() []Dependency {
	deps := make([]Dependency, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		if !d.Optional {
			deps = append(deps, d)
		}
	}
	return deps
}

// OptionalDependencies returns the optional dependencies
func (m *Manifest) OptionalDependencies() []Dependency {
	var deps []Dependency
	for _, d := range m.Dependencies {
		if d.Optional {
			deps = append(deps, d)
		}
	}
	return deps
}

// FileEntry is one file inside the archive. The entry is owned by the
// archive reader until it is staged for writing.
type FileEntry struct {
	RelativePath string
	Kind         EntryKind
	Mode         int64
	Size         int64
	LinkTarget   string // symlinks only
	StagedPath   string // set once the entry has been staged to disk
}

// ValidationStatus is the outcome of content validation for one entry
type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusInvalid ValidationStatus = "invalid"
)

// ValidationResult holds the per-entry validation outcome.
// Fatal is true for elf/desktop/icon entries, whose failures abort the
// whole transaction; plain files only warn.
type ValidationResult struct {
	Path   string
	Kind   EntryKind
	Status ValidationStatus
	Reason string
	Fatal  bool
}

// InstalledPackage is the persisted record of one installed package
type InstalledPackage struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Architecture  string    `json:"architecture,omitempty"`
	InstallPrefix string    `json:"install_prefix"`
	OwnedFiles    []string  `json:"owned_files"`
	InstalledAt   time.Time `json:"installed_at"`
}

// Exit codes for the CLI
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitInvalidArgs = 2
	ExitArchive     = 3
	ExitValidation  = 4
	ExitDependency  = 5
	ExitConflict    = 6
	ExitDatabase    = 7
	ExitPermission  = 8
	ExitInterrupted = 130
)
