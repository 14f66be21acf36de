// Package history executes reversible editing commands and keeps the undo
// and redo stacks. Every structural change to a scene goes through a
// Command executed by a History.
package history

import (
	"fmt"

	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/scene"
)

// Command is a reversible operation.
type Command interface {
	Execute() error
	Undo() error
	Description() string
}

// Deleter is implemented by commands that remove objects or joints.
type Deleter interface {
	Deletes() bool
}

// Toucher is implemented by grouped commands that know which objects they
// affect. Redo re-selects those objects.
type Toucher interface {
	Touched() []scene.ID
}

// History holds the undo and redo stacks.
type History struct {
	undo     []Command
	redo     []Command
	sel      *scene.Selection
	log      logging.Logger
	maxDepth int
}

// New returns an empty history. maxDepth caps the undo stack; zero means
// unbounded.
func New(sel *scene.Selection, log logging.Logger, maxDepth int) *History {
	if sel == nil {
		sel = scene.NewSelection()
	}
	if log == nil {
		log = logging.NewSink(nil)
	}
	return &History{sel: sel, log: log, maxDepth: maxDepth}
}

// Execute runs cmd, pushes it onto the undo stack and clears redo.
// A command that fails is not recorded.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("%s: %w", cmd.Description(), err)
	}
	h.push(cmd)
	h.redo = nil
	return nil
}

func (h *History) push(cmd Command) {
	h.undo = append(h.undo, cmd)
	if h.maxDepth > 0 && len(h.undo) > h.maxDepth {
		h.undo = append([]Command(nil), h.undo[len(h.undo)-h.maxDepth:]...)
	}
}

// Undo reverts the most recent command and clears the selection. An empty
// stack only logs "nothing to undo".
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		h.log.Log("nothing to undo")
		return nil
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undo %s: %w", cmd.Description(), err)
	}
	h.sel.Clear()
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	h.log.Log("undo: " + cmd.Description())
	return nil
}

// Redo re-executes the most recently undone command. Deletions clear the
// selection; grouped commands re-select the objects they touched.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		h.log.Log("nothing to redo")
		return nil
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Execute(); err != nil {
		return fmt.Errorf("redo %s: %w", cmd.Description(), err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.push(cmd)

	if d, ok := cmd.(Deleter); ok && d.Deletes() {
		h.sel.Clear()
	} else if t, ok := cmd.(Toucher); ok {
		h.sel.Set(t.Touched())
	}
	h.log.Log("redo: " + cmd.Description())
	return nil
}

// Clear drops both stacks. Used when a scene is bulk loaded.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether Undo has anything to revert.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo has anything to re-apply.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDescription describes the command Undo would revert, or "".
func (h *History) UndoDescription() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Description()
}

// RedoDescription describes the command Redo would apply, or "".
func (h *History) RedoDescription() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Description()
}

// Len returns the undo and redo stack depths.
func (h *History) Len() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
