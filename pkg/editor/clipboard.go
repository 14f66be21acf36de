package editor

import (
	"fmt"

	"github.com/chazu/armature/pkg/clipboard"
	"github.com/chazu/armature/pkg/placement"
	"github.com/chazu/armature/pkg/scene"
)

// Copy snapshots the selection into the clipboard.
func (e *Editor) Copy() error {
	if err := e.clipboard.Copy(e.sel.Get()); err != nil {
		return e.fail(fmt.Errorf("copy: %w", err))
	}
	e.log.Log(fmt.Sprintf("copied %d objects", e.clipboard.Len()))
	return nil
}

// Paste offers the clipboard in the six axis directions.
func (e *Editor) Paste() (*clipboard.Preview, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	p, err := e.clipboard.PastePreview(e.sel.Get())
	if err != nil {
		return nil, e.fail(fmt.Errorf("paste: %w", err))
	}
	e.state.Mode = ModePaste
	return p, nil
}

// PasteAgain repeats the last paste one offset further along.
func (e *Editor) PasteAgain() ([]*scene.Object, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	objs, err := e.clipboard.DirectPaste(e.sel.Get())
	if err != nil {
		return nil, e.fail(fmt.Errorf("paste: %w", err))
	}
	e.selectObjects(objs)
	e.log.Log(fmt.Sprintf("pasted %d objects", len(objs)))
	return objs, nil
}

// Mirror offers reflected copies of the selection across each axis.
func (e *Editor) Mirror() (*clipboard.Preview, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	p, err := e.clipboard.MirrorPreview(e.sel.Get())
	if err != nil {
		return nil, e.fail(fmt.Errorf("mirror: %w", err))
	}
	e.state.Mode = ModeMirror
	return p, nil
}

// ClipboardPreview returns the pending paste or mirror preview, or nil.
func (e *Editor) ClipboardPreview() *clipboard.Preview {
	return e.clipboard.Preview()
}

// Confirm picks a preview choice by label: a direction such as "+x" for
// placement and paste, or an axis such as "x" for mirror.
func (e *Editor) Confirm(label string) ([]*scene.Object, error) {
	switch e.state.Mode {
	case ModePlacement:
		d, err := placement.ParseDirection(label)
		if err != nil {
			return nil, e.fail(err)
		}
		for i, c := range e.placement.Preview().Candidates {
			if c.Direction == d {
				obj, err := e.ConfirmPlacement(i)
				if err != nil {
					return nil, err
				}
				return []*scene.Object{obj}, nil
			}
		}
		return nil, e.fail(fmt.Errorf("no free position along %s", d))
	case ModeMirror, ModePaste:
		return e.commitGroup(func() ([]*scene.Object, error) { return e.clipboard.CommitLabel(label) })
	}
	return nil, e.fail(ErrWrongMode)
}

func (e *Editor) commitGroup(f func() ([]*scene.Object, error)) ([]*scene.Object, error) {
	mode := e.state.Mode
	objs, err := f()
	if err != nil {
		return nil, e.fail(err)
	}
	e.idle()
	e.selectObjects(objs)
	e.log.Log(fmt.Sprintf("%s %d objects", mode, len(objs)))
	return objs, nil
}

func (e *Editor) selectObjects(objs []*scene.Object) {
	ids := make([]scene.ID, len(objs))
	for i, o := range objs {
		ids[i] = o.ID
	}
	e.sel.Set(ids)
}
