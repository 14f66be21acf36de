package scene

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrNotReconstructable is returned by Build for recipes that cannot be
// rebuilt from their parameters, such as imported meshes.
var ErrNotReconstructable = errors.New("geometry cannot be reconstructed")

// CylinderSegments is the circular resolution requested for cylinders.
const CylinderSegments = 32

// RecipeKind names how a geometry was produced.
type RecipeKind string

const (
	RecipeBox      RecipeKind = "box"
	RecipeSphere   RecipeKind = "sphere"
	RecipeCylinder RecipeKind = "cylinder"
	RecipeCSG      RecipeKind = "csg"
	RecipeImported RecipeKind = "imported"
)

// CSG operation names stored in recipes.
const (
	OpUnion     = "union"
	OpIntersect = "intersect"
	OpSubtract  = "subtract"
)

// Recipe records enough to rebuild a solid. Size holds w,h,d for boxes,
// r for spheres and h,r for cylinders. CSG recipes fold Operands in world
// space with Op and then shift the result by -Offset so it is centered.
type Recipe struct {
	Kind     RecipeKind `toml:"kind"`
	Size     []float64  `toml:"size,omitempty"`
	Op       string     `toml:"op,omitempty"`
	Operands []Operand  `toml:"operands,omitempty"`
	Offset   []float64  `toml:"offset,omitempty"`
	Source   string     `toml:"source,omitempty"`
}

// Operand is one input of a CSG recipe, placed in world space.
type Operand struct {
	Recipe   Recipe     `toml:"recipe"`
	Position [3]float64 `toml:"position"`
	Rotation [4]float64 `toml:"rotation"` // w, x, y, z
	Scale    [3]float64 `toml:"scale"`
}

// NewOperand captures a recipe placed at t.
func NewOperand(r Recipe, t Transform) Operand {
	return Operand{
		Recipe:   r,
		Position: t.Position,
		Rotation: [4]float64{t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2]},
		Scale:    t.Scale,
	}
}

// Transform returns the operand's placement.
func (o Operand) Transform() Transform {
	return Transform{
		Position: mgl64.Vec3(o.Position),
		Rotation: mgl64.Quat{W: o.Rotation[0], V: mgl64.Vec3{o.Rotation[1], o.Rotation[2], o.Rotation[3]}},
		Scale:    mgl64.Vec3(o.Scale),
	}
}

// BoxRecipe describes a w×h×d box.
func BoxRecipe(w, h, d float64) Recipe {
	return Recipe{Kind: RecipeBox, Size: []float64{w, h, d}}
}

// SphereRecipe describes a sphere of radius r.
func SphereRecipe(r float64) Recipe {
	return Recipe{Kind: RecipeSphere, Size: []float64{r}}
}

// CylinderRecipe describes a cylinder of height h and radius r along Z.
func CylinderRecipe(h, r float64) Recipe {
	return Recipe{Kind: RecipeCylinder, Size: []float64{h, r}}
}

// Label returns a human-readable default name for objects built from r.
func (r Recipe) Label() string {
	switch r.Kind {
	case RecipeBox:
		return "Box"
	case RecipeSphere:
		return "Sphere"
	case RecipeCylinder:
		return "Cylinder"
	case RecipeCSG:
		switch r.Op {
		case OpUnion:
			return "Union"
		case OpIntersect:
			return "Intersection"
		case OpSubtract:
			return "Difference"
		}
		return "Solid"
	case RecipeImported:
		return "Import"
	}
	return "Object"
}

func (r Recipe) needSize(n int) error {
	if len(r.Size) != n {
		return fmt.Errorf("%s recipe needs %d size values, got %d", r.Kind, n, len(r.Size))
	}
	for _, v := range r.Size {
		if v <= 0 {
			return fmt.Errorf("%s recipe has non-positive size %v", r.Kind, v)
		}
	}
	return nil
}

// Build evaluates a recipe into a kernel solid.
func Build(k kernel.Kernel, r Recipe) (kernel.Solid, error) {
	switch r.Kind {
	case RecipeBox:
		if err := r.needSize(3); err != nil {
			return nil, err
		}
		return k.Box(r.Size[0], r.Size[1], r.Size[2]), nil
	case RecipeSphere:
		if err := r.needSize(1); err != nil {
			return nil, err
		}
		return k.Sphere(r.Size[0]), nil
	case RecipeCylinder:
		if err := r.needSize(2); err != nil {
			return nil, err
		}
		return k.Cylinder(r.Size[0], r.Size[1], CylinderSegments), nil
	case RecipeCSG:
		return buildCSG(k, r)
	case RecipeImported:
		return nil, fmt.Errorf("imported mesh %q: %w", r.Source, ErrNotReconstructable)
	}
	return nil, fmt.Errorf("unknown geometry kind %q: %w", r.Kind, ErrNotReconstructable)
}

func buildCSG(k kernel.Kernel, r Recipe) (kernel.Solid, error) {
	if len(r.Operands) < 2 {
		return nil, fmt.Errorf("csg recipe needs at least 2 operands, got %d", len(r.Operands))
	}
	var acc kernel.Solid
	for i, op := range r.Operands {
		s, err := Build(k, op.Recipe)
		if err != nil {
			return nil, fmt.Errorf("operand %d: %w", i, err)
		}
		s = Place(k, s, op.Transform())
		if acc == nil {
			acc = s
			continue
		}
		switch r.Op {
		case OpUnion:
			acc = k.Union(acc, s)
		case OpIntersect:
			acc = k.Intersection(acc, s)
		case OpSubtract:
			acc = k.Difference(acc, s)
		default:
			return nil, fmt.Errorf("unknown csg op %q", r.Op)
		}
	}
	if len(r.Offset) == 3 {
		acc = k.Translate(acc, -r.Offset[0], -r.Offset[1], -r.Offset[2])
	}
	return acc, nil
}

// Place applies t to a local solid: scale, then rotate, then translate.
func Place(k kernel.Kernel, s kernel.Solid, t Transform) kernel.Solid {
	s = k.Scale(s, t.Scale[0], t.Scale[1], t.Scale[2])
	axis, angle := AxisAngle(t.Rotation)
	s = k.RotateAxis(s, axis, angle)
	if t.Position != (mgl64.Vec3{}) {
		s = k.Translate(s, t.Position[0], t.Position[1], t.Position[2])
	}
	return s
}

// Geometry is an immutable solid plus its lazily tessellated mesh. It is
// shared by pointer between objects, clipboard entries and commands.
type Geometry struct {
	Recipe Recipe
	Solid  kernel.Solid
	mesh   *kernel.Mesh
}

// NewGeometry builds a geometry from a recipe.
func NewGeometry(k kernel.Kernel, r Recipe) (*Geometry, error) {
	s, err := Build(k, r)
	if err != nil {
		return nil, err
	}
	return &Geometry{Recipe: r, Solid: s}, nil
}

// NewGeometryWithMesh wraps an already evaluated solid and mesh.
func NewGeometryWithMesh(r Recipe, s kernel.Solid, m *kernel.Mesh) *Geometry {
	return &Geometry{Recipe: r, Solid: s, mesh: m}
}

// Bounds returns the local-space bounding box.
func (g *Geometry) Bounds() Box {
	if g == nil || g.Solid == nil {
		if g != nil && !g.mesh.IsEmpty() {
			return BoxFromArrays(g.mesh.Bounds())
		}
		return EmptyBox()
	}
	return BoxFromArrays(g.Solid.BoundingBox())
}

// Mesh returns the cached mesh, tessellating on first use.
func (g *Geometry) Mesh(k kernel.Kernel) (*kernel.Mesh, error) {
	if g.mesh != nil {
		return g.mesh, nil
	}
	if g.Solid == nil {
		return nil, fmt.Errorf("geometry %s has no solid", g.Recipe.Kind)
	}
	m, err := k.ToMesh(g.Solid)
	if err != nil {
		return nil, err
	}
	g.mesh = m
	return m, nil
}
