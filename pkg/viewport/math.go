package viewport

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultAngleSnap is the rotation snap increment.
const DefaultAngleSnap = math.Pi / 8 // 22.5°

// MinSize is the smallest extent a scale gesture can produce.
const MinSize = 0.01

// Modifiers are the keyboard modifiers held during a gesture. Shift locks
// translation to one screen axis and makes scaling uniform, Ctrl snaps to
// the grid or angle increment, Alt anchors scaling at the group center.
type Modifiers struct {
	Shift, Ctrl, Alt bool
}

// Snap rounds v to the nearest multiple of cell.
func Snap(v, cell float64) float64 {
	if cell <= 0 {
		return v
	}
	return math.Round(v/cell) * cell
}

// lockAxis zeroes the smaller screen component.
func lockAxis(d mgl64.Vec2) mgl64.Vec2 {
	if math.Abs(d[0]) >= math.Abs(d[1]) {
		return mgl64.Vec2{d[0], 0}
	}
	return mgl64.Vec2{0, d[1]}
}

// TranslateDelta converts a pointer drag from -> to into a world delta for
// an object whose pivot is at pivot.
func (v *Viewport) TranslateDelta(pivot mgl64.Vec3, from, to mgl64.Vec2, mods Modifiers, grid float64) mgl64.Vec3 {
	d := to.Sub(from)
	if mods.Shift {
		d = lockAxis(d)
	}

	var out mgl64.Vec3
	if m, ok := v.Kind.Mapping(); ok {
		wpp := v.WorldPerPixel()
		out[m.H] = d[0] * wpp * m.HSign
		out[m.V] = d[1] * wpp * m.VSign
	} else {
		out = v.planeDelta(pivot, d)
	}

	if mods.Ctrl {
		for i := range out {
			out[i] = Snap(out[i], grid)
		}
	}
	return out
}

// planeDelta moves along the plane through pivot facing the camera.
func (v *Viewport) planeDelta(pivot mgl64.Vec3, d mgl64.Vec2) mgl64.Vec3 {
	ps := v.Project(pivot)
	origin := mgl64.Vec2{ps[0], ps[1]}
	a, errA := v.Unproject(origin, ps[2])
	b, errB := v.Unproject(origin.Add(d), ps[2])
	if errA != nil || errB != nil {
		return mgl64.Vec3{}
	}
	return b.Sub(a)
}

// SignedAngle returns the angle in radians from center->from to
// center->to in screen space. Positive values turn clockwise on screen.
func SignedAngle(center, from, to mgl64.Vec2) float64 {
	a := from.Sub(center)
	b := to.Sub(center)
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	cross := a[0]*b[1] - a[1]*b[0]
	return math.Atan2(cross, a.Dot(b))
}

// RotationFor turns a clockwise screen angle into a world rotation about
// the axis pointing at the viewer.
func (v *Viewport) RotationFor(angle float64) mgl64.Quat {
	return mgl64.QuatRotate(-angle, v.TowardViewer())
}

// RotateDelta returns the rotation produced by dragging from -> to around
// pivot, snapped to snap radians when Ctrl is held.
func (v *Viewport) RotateDelta(pivot mgl64.Vec3, from, to mgl64.Vec2, mods Modifiers, snap float64) mgl64.Quat {
	angle := SignedAngle(v.ProjectXY(pivot), from, to)
	if mods.Ctrl {
		if snap <= 0 {
			snap = DefaultAngleSnap
		}
		angle = Snap(angle, snap)
	}
	return v.RotationFor(angle)
}
