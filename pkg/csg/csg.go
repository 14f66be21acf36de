// Package csg replaces selected objects with their boolean combination.
// Every operation either commits one macro that deletes the sources and
// adds the result, or returns an error and leaves the scene untouched.
package csg

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Sentinel errors.
var (
	ErrNotEnoughObjects = errors.New("boolean needs at least 2 objects")
	ErrEmptyResult      = errors.New("boolean result is empty")
	ErrNoSolid          = errors.New("object has no solid geometry")
)

// Engine evaluates booleans with a geometry kernel.
type Engine struct {
	kernel  kernel.Kernel
	scene   *scene.Scene
	history *history.History
}

// New returns a boolean engine.
func New(k kernel.Kernel, s *scene.Scene, h *history.History) *Engine {
	return &Engine{kernel: k, scene: s, history: h}
}

// operand is one source object placed in world space.
type operand struct {
	obj    *scene.Object
	solid  kernel.Solid
	bounds scene.Box
	recipe scene.Operand
}

func (e *Engine) operands(ids []scene.ID) ([]operand, error) {
	ops := make([]operand, 0, len(ids))
	for _, id := range ids {
		obj := e.scene.Get(id)
		if obj == nil {
			return nil, fmt.Errorf("object %s: %w", id.Short(), scene.ErrNotFound)
		}
		if obj.Geometry == nil || obj.Geometry.Solid == nil {
			return nil, fmt.Errorf("%s: %w", obj.Name, ErrNoSolid)
		}
		w := e.scene.World(id)
		ops = append(ops, operand{
			obj:    obj,
			solid:  scene.Place(e.kernel, obj.Geometry.Solid, w),
			bounds: e.scene.WorldBounds(id),
			recipe: scene.NewOperand(obj.Geometry.Recipe, w),
		})
	}
	return ops, nil
}

// Union merges the objects into one.
func (e *Engine) Union(ids []scene.ID) (*scene.Object, error) {
	return e.fold(scene.OpUnion, ids)
}

// Intersect keeps only the volume shared by every object.
func (e *Engine) Intersect(ids []scene.ID) (*scene.Object, error) {
	return e.fold(scene.OpIntersect, ids)
}

func (e *Engine) fold(op string, ids []scene.ID) (*scene.Object, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("%s: %w", op, ErrNotEnoughObjects)
	}
	ops, err := e.operands(ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc, mesh, err := e.combine(op, ops)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r := scene.Recipe{Kind: scene.RecipeCSG, Op: op}
	for _, o := range ops {
		r.Operands = append(r.Operands, o.recipe)
	}
	return e.commit(op, r, acc, mesh, ops[0].obj.Material, ops)
}

// Subtract removes drill from the union of bases.
func (e *Engine) Subtract(bases []scene.ID, drill scene.ID) (*scene.Object, error) {
	if len(bases) == 0 {
		return nil, fmt.Errorf("subtract: %w", ErrNotEnoughObjects)
	}
	for _, id := range bases {
		if id == drill {
			return nil, fmt.Errorf("subtract: drill %s is also a base", id.Short())
		}
	}
	baseOps, err := e.operands(bases)
	if err != nil {
		return nil, fmt.Errorf("subtract: %w", err)
	}
	drillOps, err := e.operands([]scene.ID{drill})
	if err != nil {
		return nil, fmt.Errorf("subtract: %w", err)
	}

	base := baseOps[0]
	baseRecipe := base.recipe
	if len(baseOps) > 1 {
		solid, _, err := e.combine(scene.OpUnion, baseOps)
		if err != nil {
			return nil, fmt.Errorf("subtract: %w", err)
		}
		u := scene.Recipe{Kind: scene.RecipeCSG, Op: scene.OpUnion}
		for _, o := range baseOps {
			u.Operands = append(u.Operands, o.recipe)
			base.bounds = base.bounds.Union(o.bounds)
		}
		base.solid = solid
		baseRecipe = scene.NewOperand(u, scene.Identity())
	}

	acc, mesh, err := e.combine(scene.OpSubtract, []operand{base, drillOps[0]})
	if err != nil {
		return nil, fmt.Errorf("subtract: %w", err)
	}
	r := scene.Recipe{
		Kind:     scene.RecipeCSG,
		Op:       scene.OpSubtract,
		Operands: []scene.Operand{baseRecipe, drillOps[0].recipe},
	}
	consumed := append(baseOps, drillOps[0])
	return e.commit(scene.OpSubtract, r, acc, mesh, baseOps[0].obj.Material, consumed)
}

// combine folds ops pairwise, tessellating after every step so that an
// empty intermediate aborts the whole operation.
func (e *Engine) combine(op string, ops []operand) (kernel.Solid, *kernel.Mesh, error) {
	acc := ops[0].solid
	accBounds := ops[0].bounds
	var mesh *kernel.Mesh
	for _, o := range ops[1:] {
		switch op {
		case scene.OpUnion:
			acc = e.kernel.Union(acc, o.solid)
			accBounds = accBounds.Union(o.bounds)
		case scene.OpIntersect:
			if !accBounds.Intersects(o.bounds) {
				return nil, nil, fmt.Errorf("%s and %s do not overlap: %w", ops[0].obj.Name, o.obj.Name, ErrEmptyResult)
			}
			acc = e.kernel.Intersection(acc, o.solid)
			accBounds = intersection(accBounds, o.bounds)
		case scene.OpSubtract:
			acc = e.kernel.Difference(acc, o.solid)
		default:
			return nil, nil, fmt.Errorf("unknown boolean %q", op)
		}
		m, err := e.kernel.ToMesh(acc)
		if err != nil {
			return nil, nil, err
		}
		if m.IsEmpty() {
			return nil, nil, fmt.Errorf("after %s: %w", o.obj.Name, ErrEmptyResult)
		}
		mesh = m
	}
	return acc, mesh, nil
}

// commit recenters the result on its own origin and replaces the sources
// with it in a single undo step.
func (e *Engine) commit(op string, r scene.Recipe, s kernel.Solid, m *kernel.Mesh, mat scene.Material, sources []operand) (*scene.Object, error) {
	c := scene.BoxFromArrays(m.Bounds()).Center()
	r.Offset = []float64{c[0], c[1], c[2]}
	s = e.kernel.Translate(s, -c[0], -c[1], -c[2])
	g := scene.NewGeometryWithMesh(r, s, m.Translated([3]float64{-c[0], -c[1], -c[2]}))

	obj := scene.NewObject(e.scene.UniqueName(r.Label()), g, mat.Clone(), scene.At(mgl64.Vec3(c)))
	cmds := make([]history.Command, 0, len(sources)+1)
	for _, o := range sources {
		cmds = append(cmds, history.NewDeleteObject(e.scene, o.obj.ID))
	}
	cmds = append(cmds, history.NewAddObject(e.scene, obj))
	macro := history.NewMacro(fmt.Sprintf("%s %d objects", op, len(sources)), cmds...)
	if err := e.history.Execute(macro); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return obj, nil
}

func intersection(a, b scene.Box) scene.Box {
	var out scene.Box
	for i := 0; i < 3; i++ {
		out.Min[i] = max(a.Min[i], b.Min[i])
		out.Max[i] = min(a.Max[i], b.Max[i])
	}
	return out
}
