package editor

import (
	"fmt"

	"github.com/chazu/armature/pkg/scene"
)

// Union merges the selection into one object.
func (e *Editor) Union() (*scene.Object, error) {
	return e.fold("union", e.booleans.Union)
}

// Intersect replaces the selection with its common volume.
func (e *Editor) Intersect() (*scene.Object, error) {
	return e.fold("intersect", e.booleans.Intersect)
}

func (e *Editor) fold(op string, f func([]scene.ID) (*scene.Object, error)) (*scene.Object, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) < 2 {
		return nil, e.fail(fmt.Errorf("%s: %w", op, ErrNotEnoughSelected))
	}
	obj, err := f(ids)
	if err != nil {
		return nil, e.fail(err)
	}
	e.sel.Set([]scene.ID{obj.ID})
	e.log.Log(fmt.Sprintf("%s %d objects into %s", op, len(ids), obj.Name))
	return obj, nil
}

// BeginSubtract takes the selection as the bases and waits for the drill
// to be picked with PickDrill or a click.
func (e *Editor) BeginSubtract() error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) == 0 {
		return e.fail(fmt.Errorf("subtract: %w", ErrNotEnoughSelected))
	}
	e.state.Mode = ModeSubtract
	e.state.SubtractBases = ids
	e.log.Log("subtract: pick the object to cut away")
	return nil
}

// PickDrill finishes a subtract started by BeginSubtract. On failure the
// mode is rolled back and the bases stay selected.
func (e *Editor) PickDrill(drill scene.ID) (*scene.Object, error) {
	if e.state.Mode != ModeSubtract {
		return nil, e.fail(ErrWrongMode)
	}
	bases := e.state.SubtractBases
	obj, err := e.booleans.Subtract(bases, drill)
	if err != nil {
		e.Cancel()
		return nil, e.fail(err)
	}
	e.idle()
	e.sel.Set([]scene.ID{obj.ID})
	e.log.Log(fmt.Sprintf("subtract into %s", obj.Name))
	return obj, nil
}

// Subtract cuts drill out of the other selected objects.
func (e *Editor) Subtract(drill scene.ID) (*scene.Object, error) {
	var bases []scene.ID
	for _, id := range e.sel.Get() {
		if id != drill {
			bases = append(bases, id)
		}
	}
	if len(bases) == 0 {
		return nil, e.fail(fmt.Errorf("subtract: %w", ErrNotEnoughSelected))
	}
	e.sel.Set(bases)
	if err := e.BeginSubtract(); err != nil {
		return nil, err
	}
	return e.PickDrill(drill)
}
