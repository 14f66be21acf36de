// Package tessellate walks a scene and produces world-space triangle
// meshes using a geometry kernel. One mesh is produced per object.
package tessellate

import (
	"fmt"

	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Part is one object's mesh placed in world space.
type Part struct {
	ID       scene.ID
	Name     string
	Material scene.Material
	Mesh     *kernel.Mesh
}

// Tessellate produces one world-space mesh per object, in scene order.
// Local meshes are cached on the shared geometry; the scene is never
// mutated otherwise. Objects without geometry are skipped.
func Tessellate(s *scene.Scene, k kernel.Kernel) ([]Part, error) {
	if s == nil {
		return nil, nil
	}
	var parts []Part
	for _, obj := range s.Objects() {
		if obj.Geometry == nil {
			continue
		}
		local, err := obj.Geometry.Mesh(k)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %s: %w", obj.Name, err)
		}
		m := Place(local, s.World(obj.ID))
		m.PartName = obj.Name
		parts = append(parts, Part{
			ID:       obj.ID,
			Name:     obj.Name,
			Material: obj.Material.Clone(),
			Mesh:     m,
		})
	}
	return parts, nil
}

// Place returns a copy of m with every vertex mapped through t. Normals
// follow the inverse-transpose of the linear part, and triangle winding
// is flipped when t mirrors space.
func Place(m *kernel.Mesh, t scene.Transform) *kernel.Mesh {
	out := &kernel.Mesh{PartName: m.PartName}
	if m.IsEmpty() {
		return out
	}
	out.Vertices = make([]float32, len(m.Vertices))
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		p := t.Apply(mgl64.Vec3{float64(m.Vertices[v]), float64(m.Vertices[v+1]), float64(m.Vertices[v+2])})
		out.Vertices[v], out.Vertices[v+1], out.Vertices[v+2] = float32(p[0]), float32(p[1]), float32(p[2])
	}

	inv := mgl64.Vec3{recip(t.Scale[0]), recip(t.Scale[1]), recip(t.Scale[2])}
	out.Normals = make([]float32, len(m.Normals))
	for v := 0; v+2 < len(m.Normals); v += 3 {
		n := mgl64.Vec3{
			float64(m.Normals[v]) * inv[0],
			float64(m.Normals[v+1]) * inv[1],
			float64(m.Normals[v+2]) * inv[2],
		}
		n = t.Rotation.Rotate(n)
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		out.Normals[v], out.Normals[v+1], out.Normals[v+2] = float32(n[0]), float32(n[1]), float32(n[2])
	}

	out.Indices = make([]uint32, len(m.Indices))
	copy(out.Indices, m.Indices)
	if t.Scale[0]*t.Scale[1]*t.Scale[2] < 0 {
		for i := 0; i+2 < len(out.Indices); i += 3 {
			out.Indices[i+1], out.Indices[i+2] = out.Indices[i+2], out.Indices[i+1]
		}
	}
	return out
}

func recip(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}
