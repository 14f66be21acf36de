package editor

import (
	"math"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	"github.com/go-gl/mathgl/mgl64"
)

// HandleRadius is how close in pixels a press must be to grab a scale
// handle.
const HandleRadius = 8.0

// screenRect returns the screen rectangle covered by b in v.
func screenRect(v *viewport.Viewport, b scene.Box) (min, max mgl64.Vec2) {
	min = mgl64.Vec2{math.Inf(1), math.Inf(1)}
	max = mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	for _, c := range b.Corners() {
		s := v.ProjectXY(c)
		for i := 0; i < 2; i++ {
			min[i] = math.Min(min[i], s[i])
			max[i] = math.Max(max[i], s[i])
		}
	}
	return min, max
}

func hits(v *viewport.Viewport, b scene.Box, p mgl64.Vec2) (float64, bool) {
	if b.Empty() {
		return 0, false
	}
	min, max := screenRect(v, b)
	if p[0] < min[0] || p[0] > max[0] || p[1] < min[1] || p[1] > max[1] {
		return 0, false
	}
	return v.Project(b.Center())[2], true
}

// Pick returns the object nearest the camera whose projected bounds
// contain p, or "" for empty space.
func (e *Editor) Pick(kind viewport.Kind, p mgl64.Vec2) scene.ID {
	v := e.views[kind]
	var best scene.ID
	bestDepth := math.Inf(1)
	for _, o := range e.scene.Objects() {
		if d, ok := hits(v, e.scene.WorldBounds(o.ID), p); ok && d < bestDepth {
			best, bestDepth = o.ID, d
		}
	}
	return best
}

// PointerDown handles a press. It reports false when the press was
// ignored because another pointer already owns a gesture.
func (e *Editor) PointerDown(pointer int, kind viewport.Kind, p mgl64.Vec2, mods viewport.Modifiers) bool {
	if e.state.ActivePointer != NoPointer {
		return false
	}
	v := e.views[kind]
	switch e.state.Mode {
	case ModePlacement:
		e.clickPlacement(v, p)
		return true
	case ModeMirror, ModePaste:
		e.clickPreview(v, p)
		return true
	case ModeSubtract:
		hit := e.Pick(kind, p)
		if hit == "" || contains(e.state.SubtractBases, hit) {
			e.Cancel()
			return true
		}
		_, _ = e.PickDrill(hit)
		return true
	}

	if e.state.Tool == viewport.Scale {
		return e.beginScale(pointer, kind, p, mods)
	}

	hit := e.Pick(kind, p)
	if hit == "" {
		if !e.insideGizmo(v, p) {
			e.sel.Clear()
			return true
		}
	} else if !e.sel.Contains(hit) {
		if mods.Shift {
			e.sel.Add(hit)
		} else {
			e.sel.Set([]scene.ID{hit})
		}
	}

	// Dragging a jointed part articulates it; Alt moves it freely.
	if hit != "" && !mods.Alt && len(kinematics.NewGraph(e.scene).JointsOf(hit)) > 0 {
		contact, err := v.Unproject(p, v.Project(e.scene.WorldBounds(hit).Center())[2])
		if err != nil {
			contact = e.scene.WorldBounds(hit).Center()
		}
		pose, err := kinematics.BeginPose(e.scene, v, hit, contact, p, e.snapping.Angle)
		if err != nil {
			_ = e.fail(err)
			return true
		}
		e.pose = pose
		e.grab(ModePose, pointer, kind)
		return true
	}

	g, err := viewport.BeginGesture(e.scene, v, e.sel.Get(), e.state.Tool, p, viewport.Handle{}, e.snapping)
	if err != nil {
		_ = e.fail(err)
		return true
	}
	e.gesture = g
	e.grab(ModeTransform, pointer, kind)
	return true
}

func (e *Editor) beginScale(pointer int, kind viewport.Kind, p mgl64.Vec2, mods viewport.Modifiers) bool {
	v := e.views[kind]
	giz, ok := v.Gizmo(e.scene.BoundsOf(e.sel.Get()))
	if !ok {
		return true
	}
	h, ok := giz.HandleAt(p, HandleRadius)
	if !ok {
		if hit := e.Pick(kind, p); hit != "" {
			e.sel.Set([]scene.ID{hit})
		}
		return true
	}
	g, err := viewport.BeginGesture(e.scene, v, e.sel.Get(), viewport.Scale, p, h, e.snapping)
	if err != nil {
		_ = e.fail(err)
		return true
	}
	e.gesture = g
	e.grab(ModeTransform, pointer, kind)
	return true
}

func (e *Editor) grab(m Mode, pointer int, kind viewport.Kind) {
	e.state.Mode = m
	e.state.ActivePointer = pointer
	e.state.ActiveView = kind
}

func (e *Editor) insideGizmo(v *viewport.Viewport, p mgl64.Vec2) bool {
	if e.sel.Len() == 0 {
		return false
	}
	giz, ok := v.Gizmo(e.scene.BoundsOf(e.sel.Get()))
	return ok && giz.Contains(p)
}

// PointerMove updates the gesture owned by pointer.
func (e *Editor) PointerMove(pointer int, p mgl64.Vec2, mods viewport.Modifiers) {
	if pointer == NoPointer || pointer != e.state.ActivePointer {
		return
	}
	switch {
	case e.gesture != nil:
		e.gesture.Update(p, mods)
	case e.pose != nil:
		e.pose.Update(p, mods)
	}
}

// PointerUp finishes the gesture owned by pointer and commits it as one
// history entry.
func (e *Editor) PointerUp(pointer int, p mgl64.Vec2, mods viewport.Modifiers) error {
	if pointer == NoPointer || pointer != e.state.ActivePointer {
		return nil
	}
	e.PointerMove(pointer, p, mods)
	var cmd history.Command
	switch {
	case e.gesture != nil:
		cmd = e.gesture.End()
	case e.pose != nil:
		cmd = e.pose.End()
	}
	e.idle()
	if cmd == nil {
		return nil
	}
	return e.execute(cmd)
}

func (e *Editor) clickPlacement(v *viewport.Viewport, p mgl64.Vec2) {
	best, bestDepth := -1, math.Inf(1)
	for i, c := range e.placement.Preview().Candidates {
		if d, ok := hits(v, c.Bounds, p); ok && d < bestDepth {
			best, bestDepth = i, d
		}
	}
	if best < 0 {
		e.Cancel()
		return
	}
	_, _ = e.ConfirmPlacement(best)
}

func (e *Editor) clickPreview(v *viewport.Viewport, p mgl64.Vec2) {
	prev := e.clipboard.Preview()
	best, bestDepth := -1, math.Inf(1)
	for i, g := range prev.Groups {
		if d, ok := hits(v, g.Bounds(), p); ok && d < bestDepth {
			best, bestDepth = i, d
		}
	}
	if best < 0 {
		e.Cancel()
		return
	}
	_, _ = e.commitGroup(func() ([]*scene.Object, error) { return e.clipboard.Commit(best) })
}

func contains(ids []scene.ID, id scene.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
