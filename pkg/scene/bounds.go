package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl64.Vec3
}

// EmptyBox returns an inverted box that acts as the identity for Union.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: mgl64.Vec3{inf, inf, inf},
		Max: mgl64.Vec3{-inf, -inf, -inf},
	}
}

// BoxFromArrays converts kernel-style bounds.
func BoxFromArrays(min, max [3]float64) Box {
	return Box{Min: mgl64.Vec3(min), Max: mgl64.Vec3(max)}
}

// Empty reports whether the box encloses nothing.
func (b Box) Empty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent along each axis.
func (b Box) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Intersects reports whether the interiors overlap. Boxes that only touch
// along a face do not intersect.
func (b Box) Intersects(o Box) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	for i := 0; i < 3; i++ {
		if b.Min[i] >= o.Max[i] || o.Min[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// Union returns the smallest box enclosing both.
func (b Box) Union(o Box) Box {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	var out Box
	for i := 0; i < 3; i++ {
		out.Min[i] = math.Min(b.Min[i], o.Min[i])
		out.Max[i] = math.Max(b.Max[i], o.Max[i])
	}
	return out
}

// Translate shifts the box by d.
func (b Box) Translate(d mgl64.Vec3) Box {
	return Box{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Corners returns the eight corner points.
func (b Box) Corners() [8]mgl64.Vec3 {
	var c [8]mgl64.Vec3
	for i := 0; i < 8; i++ {
		for a := 0; a < 3; a++ {
			if i&(1<<a) != 0 {
				c[i][a] = b.Max[a]
			} else {
				c[i][a] = b.Min[a]
			}
		}
	}
	return c
}

// Transformed returns the world AABB of a local box under t.
func (b Box) Transformed(t Transform) Box {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for _, c := range b.Corners() {
		p := t.Apply(c)
		out = out.Union(Box{Min: p, Max: p})
	}
	return out
}
