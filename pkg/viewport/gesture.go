package viewport

import (
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// GestureKind selects what a drag does.
type GestureKind int

const (
	Translate GestureKind = iota
	Rotate
	Scale
)

func (k GestureKind) String() string {
	switch k {
	case Translate:
		return "translate"
	case Rotate:
		return "rotate"
	case Scale:
		return "scale"
	}
	return fmt.Sprintf("GestureKind(%d)", int(k))
}

// Snapping holds the grid cell and angle increment used by Ctrl.
type Snapping struct {
	Grid  float64
	Angle float64 // radians
}

// Gesture is one drag in progress on a viewport.
type Gesture struct {
	Kind     GestureKind
	view     *Viewport
	scene    *scene.Scene
	group    *TransformGroup
	start    mgl64.Vec2
	handle   Handle
	snapping Snapping
}

// BeginGesture groups ids and starts a drag at start. handle is only used
// by Scale gestures.
func BeginGesture(s *scene.Scene, v *Viewport, ids []scene.ID, kind GestureKind, start mgl64.Vec2, handle Handle, snap Snapping) (*Gesture, error) {
	if kind == Scale && !v.Ortho() {
		return nil, fmt.Errorf("scale needs an orthographic view, got %s", v.Kind)
	}
	g, err := BeginGroup(s, ids)
	if err != nil {
		return nil, err
	}
	return &Gesture{
		Kind:     kind,
		view:     v,
		scene:    s,
		group:    g,
		start:    start,
		handle:   handle,
		snapping: snap,
	}, nil
}

// Group exposes the transient group for rendering.
func (g *Gesture) Group() *TransformGroup { return g.group }

// Update moves the group for the pointer at p.
func (g *Gesture) Update(p mgl64.Vec2, mods Modifiers) {
	pivot := g.group.Pivot()
	switch g.Kind {
	case Translate:
		d := g.view.TranslateDelta(pivot.Position, g.start, p, mods, g.snapping.Grid)
		g.group.Set(scene.At(pivot.Position.Add(d)))
	case Rotate:
		t := pivot
		t.Rotation = g.view.RotateDelta(pivot.Position, g.start, p, mods, g.snapping.Angle)
		g.group.Set(t)
	case Scale:
		to := g.view.ScaleBox(g.group.Bounds(), g.handle, g.start, p, mods, g.snapping.Grid)
		g.group.Set(BoxTransform(g.group.Bounds(), to))
	}
}

// End dissolves the group and returns the command recording the gesture,
// or nil when nothing moved.
func (g *Gesture) End() history.Command {
	return g.group.Command(g.Kind.String())
}

// ChangeCommand records changes as a Transform for a single object, a
// Macro of Transforms for several, or nil when nothing moved. Joint moves
// join the same step.
func ChangeCommand(s *scene.Scene, verb string, changes []Change, joints []history.Pose) history.Command {
	var cmds []history.Command
	for _, c := range changes {
		if c.Changed() {
			cmds = append(cmds, history.NewTransform(s, c.ID, c.Before, c.After))
		}
	}
	if len(cmds) > 0 && len(joints) > 0 {
		cmds = append(cmds, &history.JointTransform{Scene: s, Joints: joints})
	}
	switch {
	case len(cmds) == 0:
		return nil
	case len(changes) == 1 && len(cmds) == 1:
		return cmds[0]
	}
	return history.NewMacro(fmt.Sprintf("%s %d objects", verb, len(changes)), cmds...)
}

// Cancel dissolves the group and restores every object.
func (g *Gesture) Cancel() {
	g.group.Cancel()
}
