package validate

import (
	"debug/elf"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/zpkg/internal/core"
	"github.com/quantmind-br/zpkg/internal/desktop"
	"github.com/quantmind-br/zpkg/internal/icons"
)

// machines whose pointer width pins the expected ELF class
var machineClass = map[elf.Machine]elf.Class{
	elf.EM_386:     elf.ELFCLASS32,
	elf.EM_ARM:     elf.ELFCLASS32,
	elf.EM_PPC:     elf.ELFCLASS32,
	elf.EM_MIPS:    elf.ELFCLASS32,
	elf.EM_X86_64:  elf.ELFCLASS64,
	elf.EM_AARCH64: elf.ELFCLASS64,
	elf.EM_PPC64:   elf.ELFCLASS64,
	elf.EM_RISCV:   elf.ELFCLASS64,
	elf.EM_S390:    elf.ELFCLASS64,
}

// Validator inspects staged file entries for structural sanity. It is
// stateless and never mutates the filesystem.
type Validator struct {
	fs  afero.Fs
	log *zerolog.Logger
}

// New creates a validator reading staged entries from fs
func New(fs afero.Fs, log *zerolog.Logger) *Validator {
	return &Validator{fs: fs, log: log}
}

// ValidateAll checks every entry and returns the per-entry results.
// Failures on elf/desktop/icon entries are fatal; plain regular files
// are not deep-validated and can only warn.
func (v *Validator) ValidateAll(entries []core.FileEntry) []core.ValidationResult {
	results := make([]core.ValidationResult, 0, len(entries))
	for i := range entries {
		results = append(results, v.validateEntry(&entries[i]))
	}
	return results
}

// FirstFatal returns the first fatal invalid result as a
// ValidationError, or nil when the set is installable
func FirstFatal(results []core.ValidationResult) error {
	for _, res := range results {
		if res.Status == core.StatusInvalid && res.Fatal {
			return &core.ValidationError{Kind: res.Kind, Path: res.Path, Reason: res.Reason}
		}
	}
	return nil
}

func (v *Validator) validateEntry(entry *core.FileEntry) core.ValidationResult {
	res := core.ValidationResult{
		Path:   entry.RelativePath,
		Kind:   entry.Kind,
		Status: core.StatusValid,
	}

	var err error
	switch entry.Kind {
	case core.EntryELF:
		res.Fatal = true
		err = v.checkELF(entry)
	case core.EntryDesktop:
		res.Fatal = true
		err = v.checkDesktop(entry)
	case core.EntryIcon:
		res.Fatal = true
		err = v.checkIcon(entry)
	default:
		// regular files, directories and symlinks are not deep-validated
		return res
	}

	if err != nil {
		res.Status = core.StatusInvalid
		res.Reason = err.Error()
		v.log.Debug().
			Str("entry", entry.RelativePath).
			Str("kind", string(entry.Kind)).
			Str("reason", res.Reason).
			Msg("entry failed validation")
	}

	return res
}

// checkELF verifies the ELF magic and that the declared 32/64-bit
// class is consistent with the rest of the header
func (v *Validator) checkELF(entry *core.FileEntry) error {
	f, err := v.fs.Open(entry.StagedPath)
	if err != nil {
		return fmt.Errorf("open staged entry: %w", err)
	}
	defer f.Close()

	ef, err := elf.NewFile(f)
	if err != nil {
		return fmt.Errorf("bad ELF header: %w", err)
	}
	defer ef.Close()

	if ef.Class != elf.ELFCLASS32 && ef.Class != elf.ELFCLASS64 {
		return fmt.Errorf("invalid ELF class %v", ef.Class)
	}

	if want, known := machineClass[ef.Machine]; known && ef.Class != want {
		return fmt.Errorf("class %v inconsistent with machine %v", ef.Class, ef.Machine)
	}

	return nil
}

// checkDesktop verifies group syntax and the required keys
func (v *Validator) checkDesktop(entry *core.FileEntry) error {
	f, err := v.fs.Open(entry.StagedPath)
	if err != nil {
		return fmt.Errorf("open staged entry: %w", err)
	}
	defer f.Close()

	de, err := desktop.Parse(f)
	if err != nil {
		return err
	}

	return desktop.Validate(de)
}

// checkIcon verifies the container magic matches the extension
func (v *Validator) checkIcon(entry *core.FileEntry) error {
	head, err := icons.ReadHead(v.fs, entry.StagedPath)
	if err != nil {
		return fmt.Errorf("open staged entry: %w", err)
	}

	return icons.CheckMagic(entry.RelativePath, head)
}
