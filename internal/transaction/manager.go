package transaction

import (
	"fmt"

	"github.com/rs/zerolog"
)

// UndoFunc reverses one completed step of a transaction
type UndoFunc func() error

type step struct {
	name string
	undo UndoFunc
}

// Manager records completed steps so a failing transaction can be
// unwound. Undo is an explicit rollback list, not unwinding: each step
// registers its undo before the next one runs, and cleanup is a simple
// reverse traversal.
type Manager struct {
	steps []step
	log   *zerolog.Logger
}

// NewManager creates an empty transaction manager
func NewManager(log *zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Add registers the undo for a completed step
func (m *Manager) Add(name string, undo UndoFunc) {
	m.steps = append(m.steps, step{name: name, undo: undo})
}

// Len returns the number of registered steps
func (m *Manager) Len() int {
	return len(m.steps)
}

// Rollback undoes all registered steps in reverse order (LIFO).
// Failing undos are collected and reported together; the traversal
// never stops early.
func (m *Manager) Rollback() error {
	if len(m.steps) == 0 {
		return nil
	}

	m.log.Info().Int("steps", len(m.steps)).Msg("rolling back transaction")

	var errs []error
	for i := len(m.steps) - 1; i >= 0; i-- {
		s := m.steps[i]
		m.log.Debug().Str("step", s.name).Msg("undoing")

		if err := s.undo(); err != nil {
			errs = append(errs, fmt.Errorf("undo %q: %w", s.name, err))
			m.log.Error().Err(err).Str("step", s.name).Msg("rollback step failed")
		}
	}

	m.steps = nil

	if len(errs) > 0 {
		return fmt.Errorf("rollback completed with errors: %v", errs)
	}
	return nil
}

// Commit confirms the transaction and discards the rollback list
func (m *Manager) Commit() {
	m.steps = nil
}
