package editor

import (
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
)

// RenderStates returns one read-only snapshot per viewport, in
// viewport.Kinds order.
func (e *Editor) RenderStates() []viewport.State {
	objects := e.renderObjects()
	joints := make([]viewport.RenderJoint, 0, len(e.scene.Joints()))
	for _, j := range e.scene.Joints() {
		joints = append(joints, viewport.RenderJoint{ID: j.ID, Kind: j.Kind, Position: j.Transform.Position})
	}
	sel := e.scene.BoundsOf(e.sel.Get())

	out := make([]viewport.State, 0, len(viewport.Kinds))
	for _, kind := range viewport.Kinds {
		v := e.views[kind]
		st := viewport.State{
			Viewport: *v,
			Objects:  objects,
			Joints:   joints,
			Mode:     e.state.Mode.String(),
		}
		if e.state.Mode == ModeIdle || e.state.Mode == ModeTransform {
			if g, ok := v.Gizmo(sel); ok {
				st.Gizmo = &g
			}
		}
		out = append(out, st)
	}
	return out
}

// Render hands every viewport state to r.
func (e *Editor) Render(r viewport.Renderer) {
	for _, st := range e.RenderStates() {
		r.Render(st)
	}
}

func (e *Editor) renderObjects() []viewport.RenderObject {
	var out []viewport.RenderObject
	for _, o := range e.scene.Objects() {
		out = append(out, viewport.RenderObject{
			ID:       o.ID,
			Name:     o.Name,
			Geometry: o.Geometry,
			Material: o.Material,
			World:    e.scene.World(o.ID),
			Selected: e.sel.Contains(o.ID),
		})
	}
	switch e.state.Mode {
	case ModePlacement:
		if p := e.placement.Preview(); p != nil {
			for _, c := range p.Candidates {
				out = append(out, viewport.RenderObject{
					Name:     p.Name + " " + c.Direction.String(),
					Geometry: p.Geometry,
					Material: p.Material,
					World:    scene.At(c.Position),
					Preview:  true,
				})
			}
		}
	case ModeMirror, ModePaste:
		if p := e.clipboard.Preview(); p != nil {
			for _, g := range p.Groups {
				for _, o := range g.Objects {
					out = append(out, viewport.RenderObject{
						ID:       o.ID,
						Name:     o.Name + " " + g.Label,
						Geometry: o.Geometry,
						Material: o.Material,
						World:    o.Transform,
						Preview:  true,
					})
				}
			}
		}
	}
	return out
}
