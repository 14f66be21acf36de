package history

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/scene"
)

// Macro groups commands into one undo step. Children execute front to back
// and undo back to front.
type Macro struct {
	Name     string
	Commands []Command
}

// NewMacro returns a macro over cmds.
func NewMacro(name string, cmds ...Command) *Macro {
	return &Macro{Name: name, Commands: cmds}
}

// Execute runs every child in order. If one fails, the children already
// run are undone so the macro applies all or nothing.
func (m *Macro) Execute() error {
	for i, c := range m.Commands {
		if err := c.Execute(); err != nil {
			rollback := m.undoFrom(i - 1)
			return errors.Join(fmt.Errorf("step %d (%s): %w", i, c.Description(), err), rollback)
		}
	}
	return nil
}

// Undo reverts the children in reverse order.
func (m *Macro) Undo() error {
	return m.undoFrom(len(m.Commands) - 1)
}

func (m *Macro) undoFrom(last int) error {
	var errs []error
	for i := last; i >= 0; i-- {
		if err := m.Commands[i].Undo(); err != nil {
			errs = append(errs, fmt.Errorf("undo step %d (%s): %w", i, m.Commands[i].Description(), err))
		}
	}
	return errors.Join(errs...)
}

// Description returns the macro name.
func (m *Macro) Description() string {
	if m.Name != "" {
		return m.Name
	}
	return fmt.Sprintf("%d changes", len(m.Commands))
}

// Deletes reports whether any child deletes something.
func (m *Macro) Deletes() bool {
	for _, c := range m.Commands {
		if d, ok := c.(Deleter); ok && d.Deletes() {
			return true
		}
	}
	return false
}

// Touched returns the objects affected by the children, without duplicates.
func (m *Macro) Touched() []scene.ID {
	var out []scene.ID
	seen := make(map[scene.ID]bool)
	for _, c := range m.Commands {
		for _, id := range touchedBy(c) {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

func touchedBy(c Command) []scene.ID {
	switch c := c.(type) {
	case Toucher:
		return c.Touched()
	case objectCommand:
		return []scene.ID{c.objectID()}
	}
	return nil
}

// objectCommand is implemented by commands acting on a single object.
type objectCommand interface {
	objectID() scene.ID
}
