package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/armature/pkg/kernel/sdfx"
	"github.com/go-gl/mathgl/mgl64"
)

func TestBuildPrimitives(t *testing.T) {
	k := sdfx.NewWithCells(16)
	tests := []struct {
		name string
		r    Recipe
		size mgl64.Vec3
	}{
		{"box", BoxRecipe(2, 4, 6), mgl64.Vec3{2, 4, 6}},
		{"sphere", SphereRecipe(1.5), mgl64.Vec3{3, 3, 3}},
		{"cylinder", CylinderRecipe(4, 1), mgl64.Vec3{2, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeometry(k, tt.r)
			if err != nil {
				t.Fatalf("NewGeometry error = %v", err)
			}
			if got := g.Bounds().Size(); !got.ApproxEqualThreshold(tt.size, 1e-6) {
				t.Errorf("size = %v, want %v", got, tt.size)
			}
			m, err := g.Mesh(k)
			if err != nil || m.IsEmpty() {
				t.Fatalf("Mesh() = %v, %v", m, err)
			}
			again, _ := g.Mesh(k)
			if again != m {
				t.Error("Mesh() should cache its result")
			}
		})
	}
}

func TestBuildRejects(t *testing.T) {
	k := sdfx.NewWithCells(16)
	if _, err := Build(k, Recipe{Kind: RecipeImported, Source: "part.stl"}); !errors.Is(err, ErrNotReconstructable) {
		t.Errorf("imported error = %v", err)
	}
	if _, err := Build(k, Recipe{Kind: "teapot"}); !errors.Is(err, ErrNotReconstructable) {
		t.Errorf("unknown kind error = %v", err)
	}
	if _, err := Build(k, Recipe{Kind: RecipeBox, Size: []float64{1, 1}}); err == nil {
		t.Error("short box size should fail")
	}
	if _, err := Build(k, Recipe{Kind: RecipeSphere, Size: []float64{-1}}); err == nil {
		t.Error("negative radius should fail")
	}
}

func TestBuildCSGRecentered(t *testing.T) {
	k := sdfx.NewWithCells(16)
	left := At(mgl64.Vec3{4, 0, 0})
	right := At(mgl64.Vec3{6, 0, 0})
	r := Recipe{
		Kind: RecipeCSG,
		Op:   OpUnion,
		Operands: []Operand{
			NewOperand(BoxRecipe(2, 2, 2), left),
			NewOperand(BoxRecipe(2, 2, 2), right),
		},
		Offset: []float64{5, 0, 0},
	}
	s, err := Build(k, r)
	if err != nil {
		t.Fatal(err)
	}
	b := BoxFromArrays(s.BoundingBox())
	if !b.Center().ApproxEqualThreshold(mgl64.Vec3{}, 1e-6) {
		t.Errorf("center = %v, want origin", b.Center())
	}
	if math.Abs(b.Size()[0]-4) > 1e-6 {
		t.Errorf("x size = %f, want 4", b.Size()[0])
	}
}

func TestOperandTransformRoundTrip(t *testing.T) {
	tr := Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}),
		Scale:    mgl64.Vec3{1, -1, 2},
	}
	if got := NewOperand(BoxRecipe(1, 1, 1), tr).Transform(); !got.ApproxEqual(tr) {
		t.Errorf("round trip = %+v, want %+v", got, tr)
	}
}

func TestPlaceMatchesTransformedBounds(t *testing.T) {
	k := sdfx.NewWithCells(16)
	tr := Transform{
		Position: mgl64.Vec3{5, -1, 2},
		Rotation: mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}),
		Scale:    mgl64.Vec3{2, 1, 1},
	}
	local := k.Box(2, 1, 1)
	placed := BoxFromArrays(Place(k, local, tr).BoundingBox())
	want := BoxFromArrays(local.BoundingBox()).Transformed(tr)
	if !placed.Min.ApproxEqualThreshold(want.Min, 1e-6) || !placed.Max.ApproxEqualThreshold(want.Max, 1e-6) {
		t.Errorf("Place bounds = %+v, want %+v", placed, want)
	}
}
