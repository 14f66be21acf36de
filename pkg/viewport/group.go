package viewport

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/scene"
)

// ErrNoObjects is returned when a group is requested for no objects.
var ErrNoObjects = errors.New("no objects to group")

// Change is one object's local transform before and after a gesture.
type Change struct {
	ID     scene.ID
	Before scene.Transform
	After  scene.Transform
}

// Changed reports whether the gesture moved the object.
func (c Change) Changed() bool {
	return !c.Before.ApproxEqual(c.After)
}

type member struct {
	id     scene.ID
	parent scene.ID
	local  scene.Transform
}

// TransformGroup temporarily re-parents objects under a synthetic group
// node centered on their combined bounds. Every Begin must be matched by
// End or Cancel, which restore the original parents.
type TransformGroup struct {
	scene   *scene.Scene
	group   *scene.Group
	members []member
	pivot   scene.Transform
	bounds  scene.Box
}

// BeginGroup attaches ids to a new group at the center of their bounds.
func BeginGroup(s *scene.Scene, ids []scene.ID) (*TransformGroup, error) {
	if len(ids) == 0 {
		return nil, ErrNoObjects
	}
	for _, id := range ids {
		if s.Get(id) == nil {
			return nil, fmt.Errorf("group %s: %w", id.Short(), scene.ErrNotFound)
		}
	}
	bounds := s.BoundsOf(ids)
	g := &TransformGroup{
		scene:  s,
		group:  &scene.Group{ID: scene.NewID(), Transform: scene.At(bounds.Center())},
		pivot:  scene.At(bounds.Center()),
		bounds: bounds,
	}
	if err := s.AddGroup(g.group); err != nil {
		return nil, err
	}
	for _, id := range ids {
		obj := s.Get(id)
		world := s.World(id)
		g.members = append(g.members, member{id: id, parent: obj.Parent, local: obj.Transform})
		obj.Parent = g.group.ID
		s.SetWorld(id, world)
	}
	return g, nil
}

// Pivot is the group's starting world transform.
func (g *TransformGroup) Pivot() scene.Transform { return g.pivot }

// Bounds is the combined world AABB captured at Begin.
func (g *TransformGroup) Bounds() scene.Box { return g.bounds }

// IDs returns the grouped objects.
func (g *TransformGroup) IDs() []scene.ID {
	out := make([]scene.ID, len(g.members))
	for i, m := range g.members {
		out[i] = m.id
	}
	return out
}

// Set moves the group to world transform t.
func (g *TransformGroup) Set(t scene.Transform) {
	g.group.Transform = t
}

// Transform returns the group's current world transform.
func (g *TransformGroup) Transform() scene.Transform {
	return g.group.Transform
}

// JointMoves returns how the group's current transform carries the joints
// whose parent and children are all in the group. Joints that link a
// member to an outside object stay put.
func (g *TransformGroup) JointMoves() []history.Pose {
	in := make(map[scene.ID]bool, len(g.members))
	for _, m := range g.members {
		in[m.id] = true
	}
	to := g.group.Transform
	turn := to.Rotation.Mul(g.pivot.Rotation.Inverse()).Normalize()
	var out []history.Pose
	for _, j := range g.scene.Joints() {
		carried := true
		for _, id := range j.Objects() {
			if !in[id] {
				carried = false
				break
			}
		}
		if !carried {
			continue
		}
		local := scene.Relative(g.pivot, scene.At(j.Transform.Position)).Position
		p := history.Pose{
			ID:           j.ID,
			FromPosition: j.Transform.Position,
			ToPosition:   to.Apply(local),
			FromRotation: j.Transform.Rotation,
			ToRotation:   turn.Mul(j.Transform.Rotation).Normalize(),
		}
		if p.Moved() {
			out = append(out, p)
		}
	}
	return out
}

// Command dissolves the group and returns one undo step moving its members
// and the joints carried with them, or nil when nothing moved.
func (g *TransformGroup) Command(verb string) history.Command {
	joints := g.JointMoves()
	return ChangeCommand(g.scene, verb, g.End(), joints)
}

// End bakes the group's transform into its members, restores their
// parents and returns the per-object changes.
func (g *TransformGroup) End() []Change {
	changes := make([]Change, 0, len(g.members))
	for _, m := range g.members {
		obj := g.scene.Get(m.id)
		if obj == nil {
			continue
		}
		world := g.scene.World(m.id)
		obj.Parent = m.parent
		g.scene.SetWorld(m.id, world)
		changes = append(changes, Change{ID: m.id, Before: m.local, After: obj.Transform})
	}
	g.scene.RemoveGroup(g.group.ID)
	return changes
}

// Cancel restores every member exactly as it was at Begin.
func (g *TransformGroup) Cancel() {
	for _, m := range g.members {
		if obj := g.scene.Get(m.id); obj != nil {
			obj.Parent = m.parent
			obj.Transform = m.local
		}
	}
	g.scene.RemoveGroup(g.group.ID)
}
