// Package viewport converts pointer gestures in one of four camera views
// into world-space translate, rotate and scale changes, and runs those
// gestures against a transient group node so one drag can move many
// objects around a shared pivot.
package viewport

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind identifies one of the four views.
type Kind int

const (
	Perspective Kind = iota
	Top
	Front
	Side
)

// Kinds lists every view in layout order.
var Kinds = []Kind{Perspective, Top, Front, Side}

func (k Kind) String() string {
	switch k {
	case Perspective:
		return "perspective"
	case Top:
		return "top"
	case Front:
		return "front"
	case Side:
		return "side"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a view name to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown view %q", s)
}

// Mapping ties screen axes of an orthographic view to world axes. Signs
// give the world direction of a positive screen delta (screen y grows
// downward).
type Mapping struct {
	H, V         int
	HSign, VSign float64
	Normal       int
}

var mappings = map[Kind]Mapping{
	Top:   {H: 0, V: 2, HSign: 1, VSign: 1, Normal: 1},
	Front: {H: 0, V: 1, HSign: 1, VSign: -1, Normal: 2},
	Side:  {H: 2, V: 1, HSign: -1, VSign: -1, Normal: 0},
}

// Mapping returns the axis mapping of an orthographic view.
func (k Kind) Mapping() (Mapping, bool) {
	m, ok := mappings[k]
	return m, ok
}

// Camera is the free perspective camera.
type Camera struct {
	Eye, Target, Up mgl64.Vec3
	FovY            float64 // radians
}

// DefaultCamera looks at the origin from the +X+Y+Z octant.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl64.Vec3{20, 15, 20},
		Target: mgl64.Vec3{},
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   mgl64.DegToRad(45),
	}
}

const (
	orthoDepth = 1e4
	nearPlane  = 0.1
	farPlane   = 1e4
)

// Viewport is one view onto the scene.
type Viewport struct {
	Kind         Kind
	Width        int
	Height       int
	FrustumWidth float64    // world units spanned horizontally by ortho views
	Center       mgl64.Vec3 // ortho pan target
	Camera       Camera
}

// New returns a viewport of the given kind and pixel size.
func New(kind Kind, width, height int, frustumWidth float64) *Viewport {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return &Viewport{
		Kind:         kind,
		Width:        width,
		Height:       height,
		FrustumWidth: frustumWidth,
		Camera:       DefaultCamera(),
	}
}

// Ortho reports whether the view is orthographic.
func (v *Viewport) Ortho() bool {
	return v.Kind != Perspective
}

// TowardViewer is the unit axis pointing from the scene at the camera. It
// is the axis rotations are applied about.
func (v *Viewport) TowardViewer() mgl64.Vec3 {
	if m, ok := v.Kind.Mapping(); ok {
		var n mgl64.Vec3
		n[m.Normal] = 1
		return n
	}
	d := v.Camera.Eye.Sub(v.Camera.Target)
	if d.Len() == 0 {
		return mgl64.Vec3{0, 0, 1}
	}
	return d.Normalize()
}

func (v *Viewport) orthoUp() mgl64.Vec3 {
	if v.Kind == Top {
		return mgl64.Vec3{0, 0, -1}
	}
	return mgl64.Vec3{0, 1, 0}
}

// View returns the view matrix.
func (v *Viewport) View() mgl64.Mat4 {
	if v.Ortho() {
		eye := v.Center.Add(v.TowardViewer().Mul(100))
		return mgl64.LookAtV(eye, v.Center, v.orthoUp())
	}
	return mgl64.LookAtV(v.Camera.Eye, v.Camera.Target, v.Camera.Up)
}

// Projection returns the projection matrix.
func (v *Viewport) Projection() mgl64.Mat4 {
	aspect := float64(v.Width) / float64(v.Height)
	if v.Ortho() {
		hw := v.FrustumWidth / 2
		hh := hw / aspect
		return mgl64.Ortho(-hw, hw, -hh, hh, -orthoDepth, orthoDepth)
	}
	return mgl64.Perspective(v.Camera.FovY, aspect, nearPlane, farPlane)
}

// WorldPerPixel is the world distance covered by one pixel in ortho views.
func (v *Viewport) WorldPerPixel() float64 {
	return v.FrustumWidth / float64(v.Width)
}

// Project maps a world point to screen pixels with y growing downward.
// The third component is the window depth in [0, 1].
func (v *Viewport) Project(p mgl64.Vec3) mgl64.Vec3 {
	w := mgl64.Project(p, v.View(), v.Projection(), 0, 0, v.Width, v.Height)
	return mgl64.Vec3{w[0], float64(v.Height) - w[1], w[2]}
}

// ProjectXY is Project without the depth.
func (v *Viewport) ProjectXY(p mgl64.Vec3) mgl64.Vec2 {
	s := v.Project(p)
	return mgl64.Vec2{s[0], s[1]}
}

// Unproject maps a screen point at window depth z back to world space.
func (v *Viewport) Unproject(screen mgl64.Vec2, z float64) (mgl64.Vec3, error) {
	win := mgl64.Vec3{screen[0], float64(v.Height) - screen[1], z}
	return mgl64.UnProject(win, v.View(), v.Projection(), 0, 0, v.Width, v.Height)
}

// Pan shifts the view by a screen delta.
func (v *Viewport) Pan(dx, dy float64) {
	if m, ok := v.Kind.Mapping(); ok {
		wpp := v.WorldPerPixel()
		v.Center[m.H] -= dx * wpp * m.HSign
		v.Center[m.V] -= dy * wpp * m.VSign
		return
	}
	a, errA := v.Unproject(mgl64.Vec2{0, 0}, v.Project(v.Camera.Target)[2])
	b, errB := v.Unproject(mgl64.Vec2{dx, dy}, v.Project(v.Camera.Target)[2])
	if errA != nil || errB != nil {
		return
	}
	d := a.Sub(b)
	v.Camera.Eye = v.Camera.Eye.Add(d)
	v.Camera.Target = v.Camera.Target.Add(d)
}

// Zoom scales the visible extent by factor; values below 1 zoom in.
func (v *Viewport) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	if v.Ortho() {
		v.FrustumWidth *= factor
		return
	}
	d := v.Camera.Eye.Sub(v.Camera.Target).Mul(factor)
	if d.Len() < nearPlane {
		return
	}
	v.Camera.Eye = v.Camera.Target.Add(d)
}

// Orbit turns the perspective camera around its target by yaw and pitch
// radians. Orthographic views ignore it.
func (v *Viewport) Orbit(yaw, pitch float64) {
	if v.Ortho() {
		return
	}
	d := v.Camera.Eye.Sub(v.Camera.Target)
	d = mgl64.QuatRotate(yaw, v.Camera.Up).Rotate(d)
	right := d.Cross(v.Camera.Up)
	if right.Len() > 0 {
		rotated := mgl64.QuatRotate(pitch, right.Normalize()).Rotate(d)
		// Stop short of the poles so the up vector stays valid.
		if math.Abs(rotated.Normalize().Dot(v.Camera.Up)) < 0.99 {
			d = rotated
		}
	}
	v.Camera.Eye = v.Camera.Target.Add(d)
}
