package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used when comparing transforms.
const Epsilon = 1e-9

// Transform is a position, orientation and non-uniform scale.
// Points map as p' = Position + Rotation * (Scale ⊙ p).
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// At returns an identity transform translated to p.
func At(p mgl64.Vec3) Transform {
	t := Identity()
	t.Position = p
	return t
}

// Apply maps a local point through the transform.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	s := mgl64.Vec3{p[0] * t.Scale[0], p[1] * t.Scale[1], p[2] * t.Scale[2]}
	return t.Position.Add(t.Rotation.Rotate(s))
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl64.Mat4 {
	tr := mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2])
	sc := mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(t.Rotation.Mat4()).Mul4(sc)
}

// ApproxEqual compares component-wise within Epsilon. Quaternions q and -q
// describe the same orientation and compare equal.
func (t Transform) ApproxEqual(o Transform) bool {
	return vecClose(t.Position, o.Position) &&
		vecClose(t.Scale, o.Scale) &&
		QuatClose(t.Rotation, o.Rotation)
}

// QuatClose reports whether two quaternions describe the same rotation.
func QuatClose(a, b mgl64.Quat) bool {
	same := math.Abs(a.W-b.W) <= Epsilon && vecClose(a.V, b.V)
	neg := math.Abs(a.W+b.W) <= Epsilon && vecClose(a.V, b.V.Mul(-1))
	return same || neg
}

func vecClose(a, b mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > Epsilon {
			return false
		}
	}
	return true
}

// Compose returns the world transform of a node with local transform
// local under a parent whose world transform is parent. The parent's
// scale acts along the parent's axes: each local axis of the child is
// stretched by the length the parent scale gives that axis, and any shear
// is dropped.
func Compose(parent, local Transform) Transform {
	return Transform{
		Position: parent.Apply(local.Position),
		Rotation: parent.Rotation.Mul(local.Rotation).Normalize(),
		Scale:    mulVec(stretch(parent.Scale, local.Rotation), local.Scale),
	}
}

// Relative is the inverse of Compose: it returns the local transform that
// places a node at world under parent.
func Relative(parent, world Transform) Transform {
	inv := parent.Rotation.Inverse()
	d := inv.Rotate(world.Position.Sub(parent.Position))
	rot := inv.Mul(world.Rotation).Normalize()
	return Transform{
		Position: divVec(d, parent.Scale),
		Rotation: rot,
		Scale:    divVec(world.Scale, stretch(parent.Scale, rot)),
	}
}

// stretch returns, per local axis of a child rotated by rot, the factor by
// which the parent scale s lengthens that axis. The sign follows the
// parent axis the child axis is most aligned with, so a negative parent
// scale still mirrors the child.
func stretch(s mgl64.Vec3, rot mgl64.Quat) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		var e mgl64.Vec3
		e[i] = 1
		axis := rot.Rotate(e)
		out[i] = mulVec(s, axis).Len()
		if s[dominant(axis)] < 0 {
			out[i] = -out[i]
		}
	}
	return out
}

// dominant returns the index of the largest component of v by magnitude.
func dominant(v mgl64.Vec3) int {
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	return best
}

// AxisAngle decomposes the rotation into a unit axis and an angle in
// radians. The identity rotation yields angle 0 about +X.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	w := math.Min(1, q.W)
	s := math.Sqrt(1 - w*w)
	if s < 1e-12 {
		return mgl64.Vec3{1, 0, 0}, 0
	}
	return q.V.Mul(1 / s), 2 * math.Acos(w)
}

func mulVec(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func divVec(a, b mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		if b[i] == 0 {
			out[i] = a[i]
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}
