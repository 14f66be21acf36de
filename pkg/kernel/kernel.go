// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and
// boolean operations behind this interface. The boolean engine and the
// tessellator only ever talk to a Kernel, so backends can be swapped
// from configuration without touching the editing core.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
// All primitives are centered on the origin of their local space.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	RotateAxis(s Solid, axis [3]float64, angle float64) Solid
	Scale(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Degenerate reports whether a bounding box has no volume on some axis.
// Kernels return an empty mesh for such solids instead of tessellating.
func Degenerate(min, max [3]float64) bool {
	for i := 0; i < 3; i++ {
		if max[i] <= min[i] {
			return true
		}
	}
	return false
}
