package editor

import (
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/placement"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	"github.com/go-gl/mathgl/mgl64"
)

// AddBox adds a w×h×d box. See AddRecipe.
func (e *Editor) AddBox(w, h, d float64) (*scene.Object, error) {
	return e.AddRecipe(scene.BoxRecipe(w, h, d))
}

// AddSphere adds a sphere of radius r.
func (e *Editor) AddSphere(r float64) (*scene.Object, error) {
	return e.AddRecipe(scene.SphereRecipe(r))
}

// AddCylinder adds a cylinder of height h and radius r.
func (e *Editor) AddCylinder(h, r float64) (*scene.Object, error) {
	return e.AddRecipe(scene.CylinderRecipe(h, r))
}

// AddRecipe builds r and asks the placement engine for a spot. When the
// spawn point is free the object is added and selected. Otherwise the
// editor enters placement mode and returns a nil object; ConfirmPlacement
// or a click on a candidate finishes the add.
func (e *Editor) AddRecipe(r scene.Recipe) (*scene.Object, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	g, err := scene.NewGeometry(e.kernel, r)
	if err != nil {
		return nil, e.fail(fmt.Errorf("add %s: %w", r.Label(), err))
	}
	obj, p, err := e.placement.RequestAdd(r.Label(), g, scene.DefaultMaterial())
	if err != nil {
		return nil, e.fail(err)
	}
	if p != nil {
		e.state.Mode = ModePlacement
		e.log.Log(fmt.Sprintf("%s overlaps: choose one of %d positions", r.Label(), len(p.Candidates)))
		return nil, nil
	}
	e.sel.Set([]scene.ID{obj.ID})
	e.log.Log("add " + obj.Name)
	return obj, nil
}

// PlacementPreview returns the pending placement, or nil.
func (e *Editor) PlacementPreview() *placement.Preview {
	return e.placement.Preview()
}

// ConfirmPlacement commits placement candidate i.
func (e *Editor) ConfirmPlacement(i int) (*scene.Object, error) {
	if e.state.Mode != ModePlacement {
		return nil, e.fail(ErrWrongMode)
	}
	obj, err := e.placement.Confirm(i)
	if err != nil {
		return nil, e.fail(err)
	}
	e.idle()
	e.sel.Set([]scene.ID{obj.ID})
	e.log.Log("add " + obj.Name)
	return obj, nil
}

// Select replaces the selection. Unknown IDs are an error.
func (e *Editor) Select(ids ...scene.ID) error {
	for _, id := range ids {
		if e.scene.Get(id) == nil {
			return e.fail(fmt.Errorf("select %s: %w", id.Short(), scene.ErrNotFound))
		}
	}
	e.sel.Set(ids)
	return nil
}

// Delete removes the selected objects in one undo step.
func (e *Editor) Delete() error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) == 0 {
		return e.fail(fmt.Errorf("delete: %w", ErrNotEnoughSelected))
	}
	cmds := make([]history.Command, len(ids))
	for i, id := range ids {
		cmds[i] = history.NewDeleteObject(e.scene, id)
	}
	if err := e.execute(single(fmt.Sprintf("delete %d objects", len(ids)), cmds)); err != nil {
		return err
	}
	e.sel.Clear()
	return nil
}

// Paint sets the color and metalness of the selected objects.
func (e *Editor) Paint(color string, metalness float64) error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) == 0 {
		return e.fail(fmt.Errorf("paint: %w", ErrNotEnoughSelected))
	}
	var cmds []history.Command
	for _, id := range ids {
		before := e.scene.Get(id).Material
		after := before.Clone()
		after.Color, after.Metalness = color, metalness
		if !after.Equal(before) {
			cmds = append(cmds, history.NewPaint(e.scene, id, before.Clone(), after))
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return e.execute(single(fmt.Sprintf("paint %d objects", len(cmds)), cmds))
}

// Translate moves the selection by d.
func (e *Editor) Translate(d mgl64.Vec3) error {
	return e.transformSelection("translate", func(p scene.Transform) scene.Transform {
		return scene.At(p.Position.Add(d))
	})
}

// Rotate turns the selection by angle radians about axis through the
// center of its bounds.
func (e *Editor) Rotate(axis mgl64.Vec3, angle float64) error {
	if axis.Len() == 0 {
		return e.fail(fmt.Errorf("rotate: zero axis"))
	}
	q := mgl64.QuatRotate(angle, axis.Normalize())
	return e.transformSelection("rotate", func(p scene.Transform) scene.Transform {
		p.Rotation = q
		return p
	})
}

// Scale scales the selection about the center of its bounds.
func (e *Editor) Scale(f mgl64.Vec3) error {
	for i := 0; i < 3; i++ {
		if f[i] == 0 {
			return e.fail(fmt.Errorf("scale: zero factor on axis %d", i))
		}
	}
	return e.transformSelection("scale", func(p scene.Transform) scene.Transform {
		p.Scale = f
		return p
	})
}

// transformSelection runs the same grouped transform a drag would, in one
// step.
func (e *Editor) transformSelection(verb string, f func(pivot scene.Transform) scene.Transform) error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) == 0 {
		return e.fail(fmt.Errorf("%s: %w", verb, ErrNotEnoughSelected))
	}
	g, err := viewport.BeginGroup(e.scene, ids)
	if err != nil {
		return e.fail(err)
	}
	g.Set(f(g.Pivot()))
	cmd := g.Command(verb)
	if cmd == nil {
		return nil
	}
	return e.execute(cmd)
}

// single returns the only command, or a macro of all of them.
func single(name string, cmds []history.Command) history.Command {
	if len(cmds) == 1 {
		return cmds[0]
	}
	return history.NewMacro(name, cmds...)
}
