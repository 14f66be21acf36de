package sdfx

import (
	"math"
	"testing"
)

// testCells keeps marching cubes cheap in tests.
const testCells = 24

func newTestKernel() *SdfxKernel {
	return NewWithCells(testCells)
}

func assertBounds(t *testing.T, min, max, wantMin, wantMax [3]float64, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-wantMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], wantMin[i])
		}
		if math.Abs(max[i]-wantMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], wantMax[i])
		}
	}
}

func TestBox(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 50, 25)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestSphere(t *testing.T) {
	k := newTestKernel()
	s := k.Sphere(5)
	min, max := s.BoundingBox()
	assertBounds(t, min, max, [3]float64{-5, -5, -5}, [3]float64{5, 5, 5}, 0.01)

	mesh, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("sphere mesh is empty")
	}
}

func TestCylinder(t *testing.T) {
	k := newTestKernel()
	cyl := k.Cylinder(50, 10, 32)
	mesh, err := k.ToMesh(cyl)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	t.Logf("cylinder triangle count: %d", mesh.TriangleCount())
}

func TestDifference(t *testing.T) {
	k := newTestKernel()

	box := k.Box(100, 100, 100)
	cyl := k.Cylinder(120, 20, 32)
	diff := k.Difference(box, cyl)
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	if diffMesh.IsEmpty() {
		t.Fatal("difference mesh is empty")
	}
	min, max := diff.BoundingBox()
	assertBounds(t, min, max, [3]float64{-50, -50, -50}, [3]float64{50, 50, 50}, 0.01)
}

func TestDifferenceSwallowed(t *testing.T) {
	k := newTestKernel()

	small := k.Box(10, 10, 10)
	big := k.Box(40, 40, 40)
	mesh, err := k.ToMesh(k.Difference(small, big))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Fatalf("expected empty mesh, got %d triangles", mesh.TriangleCount())
	}
}

func TestUnion(t *testing.T) {
	k := newTestKernel()
	box1 := k.Box(50, 50, 50)
	box2 := k.Translate(k.Box(50, 50, 50), 30, 0, 0)
	u := k.Union(box1, box2)
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	min, max := u.BoundingBox()
	assertBounds(t, min, max, [3]float64{-25, -25, -25}, [3]float64{55, 25, 25}, 0.01)
}

func TestTranslate(t *testing.T) {
	k := newTestKernel()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// Box(10,10,10) translated by (100,200,300) is centered at (100,200,300).
	assertBounds(t, min, max, [3]float64{95, 195, 295}, [3]float64{105, 205, 305}, 0.5)
}

func TestBoundingBox(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	assertBounds(t, min, max, [3]float64{-50, -25, -12.5}, [3]float64{50, 25, 12.5}, 0.01)
}

func TestIntersection(t *testing.T) {
	k := newTestKernel()
	box1 := k.Box(100, 100, 100)
	box2 := k.Translate(k.Box(100, 100, 100), 50, 0, 0)
	inter := k.Intersection(box1, box2)
	mesh, err := k.ToMesh(inter)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
	t.Logf("intersection triangle count: %d", mesh.TriangleCount())
}

func TestRotate(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}

func TestRotateAxis(t *testing.T) {
	k := newTestKernel()
	box := k.Box(100, 10, 10)

	rotated := k.RotateAxis(box, [3]float64{0, 0, 1}, math.Pi/2)
	min, max := rotated.BoundingBox()

	const tol = 1.0
	if ext := max[0] - min[0]; math.Abs(ext-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", ext)
	}
	if ext := max[1] - min[1]; math.Abs(ext-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", ext)
	}
}

func TestScale(t *testing.T) {
	k := newTestKernel()
	box := k.Box(10, 10, 10)

	scaled := k.Scale(box, 2, 1, 0.5)
	min, max := scaled.BoundingBox()
	assertBounds(t, min, max, [3]float64{-10, -5, -2.5}, [3]float64{10, 5, 2.5}, 0.01)

	mirrored := k.Scale(k.Translate(box, 20, 0, 0), -1, 1, 1)
	min, max = mirrored.BoundingBox()
	assertBounds(t, min, max, [3]float64{-25, -5, -5}, [3]float64{-15, 5, 5}, 0.01)
}
