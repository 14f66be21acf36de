package viewport

import (
	"math"

	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// ScaleBox returns the box produced by dragging handle h of a gizmo
// framing start from -> to. Without Alt the edge opposite the handle stays
// fixed; with Alt the center does. Shift scales all axes by the same
// factor. Ctrl rounds the changed bounds to the grid.
func (v *Viewport) ScaleBox(start scene.Box, h Handle, from, to mgl64.Vec2, mods Modifiers, grid float64) scene.Box {
	m, ok := v.Kind.Mapping()
	if !ok || start.Empty() {
		return start
	}
	wpp := v.WorldPerPixel()
	d := to.Sub(from)
	size := start.Size()

	var dSize mgl64.Vec3
	dSize[m.H] = h.MulH * d[0] * wpp
	dSize[m.V] = h.MulV * d[1] * wpp
	if mods.Alt {
		dSize = dSize.Mul(2)
	}
	newSize := size.Add(dSize)

	if mods.Shift {
		f := uniformFactor(size, newSize, dSize, m)
		newSize = size.Mul(f)
	}
	for i := range newSize {
		newSize[i] = math.Max(newSize[i], MinSize)
	}

	// moving[i] is +1 when the max edge moves, -1 for the min edge and 0
	// when the axis scales about its center.
	var moving [3]float64
	if !mods.Alt {
		moving[m.H] = h.MulH * m.HSign
		moving[m.V] = h.MulV * m.VSign
	}

	out := start
	center := start.Center()
	for i := 0; i < 3; i++ {
		switch {
		case moving[i] > 0:
			out.Max[i] = start.Min[i] + newSize[i]
		case moving[i] < 0:
			out.Min[i] = start.Max[i] - newSize[i]
		default:
			out.Min[i] = center[i] - newSize[i]/2
			out.Max[i] = center[i] + newSize[i]/2
		}
	}

	if mods.Ctrl {
		for i := 0; i < 3; i++ {
			if newSize[i] == size[i] {
				continue
			}
			out.Min[i] = Snap(out.Min[i], grid)
			out.Max[i] = Snap(out.Max[i], grid)
			if out.Max[i]-out.Min[i] < MinSize {
				out.Max[i] = out.Min[i] + MinSize
			}
		}
	}
	return out
}

// uniformFactor picks the in-view axis with the largest relative change.
func uniformFactor(size, newSize, dSize mgl64.Vec3, m Mapping) float64 {
	f, best := 1.0, -1.0
	for _, a := range []int{m.H, m.V} {
		if dSize[a] == 0 || size[a] <= 0 {
			continue
		}
		r := newSize[a] / size[a]
		if dev := math.Abs(r - 1); dev > best {
			best, f = dev, r
		}
	}
	return f
}

// BoxTransform returns the group transform that maps box from onto box to,
// assuming the group's pivot sits at from's center.
func BoxTransform(from, to scene.Box) scene.Transform {
	t := scene.At(to.Center())
	fs, ts := from.Size(), to.Size()
	for i := 0; i < 3; i++ {
		if fs[i] > 1e-12 {
			t.Scale[i] = ts[i] / fs[i]
		}
	}
	return t
}
